package auth

import "golang.org/x/text/language"

var supported = []language.Tag{
	language.English,    // en: fallback
	language.Vietnamese, // vi
}

var matcher = language.NewMatcher(supported)

// statusMessages is the small fixed set of user-facing failures the auth
// backend produces. Anything outside this set propagates as the original
// error.
var statusMessages = map[language.Tag]map[int]string{
	language.English: {
		400: "The information you entered is not valid. Please check and try again.",
		403: "This account is not allowed to perform that action.",
		500: "Something went wrong on our side. Please try again later.",
	},
	language.Vietnamese: {
		400: "Thông tin bạn nhập không hợp lệ. Vui lòng kiểm tra và thử lại.",
		403: "Tài khoản này không được phép thực hiện thao tác đó.",
		500: "Đã xảy ra lỗi từ phía chúng tôi. Vui lòng thử lại sau.",
	},
}

var offlineMessages = map[language.Tag]string{
	language.English:    "You appear to be offline. Connect to the internet and try again.",
	language.Vietnamese: "Bạn đang ngoại tuyến. Hãy kết nối mạng và thử lại.",
}

// matchLocale resolves a BCP 47 preference against the supported set,
// falling back to English.
func matchLocale(preferred string) language.Tag {
	tag, _ := language.MatchStrings(matcher, preferred)
	base, _ := tag.Base()
	for _, s := range supported {
		sb, _ := s.Base()
		if sb == base {
			return s
		}
	}
	return language.English
}

// localizeStatus returns the message for a mapped status code.
func localizeStatus(locale language.Tag, status int) (string, bool) {
	msgs, ok := statusMessages[locale]
	if !ok {
		msgs = statusMessages[language.English]
	}
	msg, ok := msgs[status]
	return msg, ok
}

// localizeOffline returns the offline precondition message.
func localizeOffline(locale language.Tag) string {
	if msg, ok := offlineMessages[locale]; ok {
		return msg
	}
	return offlineMessages[language.English]
}
