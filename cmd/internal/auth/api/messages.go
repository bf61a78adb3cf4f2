package authapi

import (
	"fmt"
	"strings"
)

// Supported locales.
const (
	LocaleArabic  = "ar"
	LocaleEnglish = "en"
)

// Messages holds the user-facing strings of the admin auth endpoints.
type Messages struct {
	LoginSuccess       string
	LoginMissingFields string
	LoginInvalid       string
	LoginSessionFailed string
	LoginFailed        string
	LoginRateLimited   string

	LogoutSuccess string
	LogoutFailed  string

	Authenticated   string
	Unauthenticated string
	SessionCheck    string

	Unauthorized          string
	PasswordFields        string
	PasswordTooShort      string // takes the minimum length
	PasswordTooLong       string
	PasswordWeak          string
	PasswordWrong         string
	PasswordAdminNotFound string
	PasswordUpdateFailed  string
	PasswordChanged       string
}

var arabic = Messages{
	LoginSuccess:       "تم تسجيل الدخول بنجاح",
	LoginMissingFields: "اسم المستخدم وكلمة المرور مطلوبان",
	LoginInvalid:       "اسم المستخدم أو كلمة المرور غير صحيحة",
	LoginSessionFailed: "حدث خطأ أثناء إنشاء الجلسة",
	LoginFailed:        "حدث خطأ أثناء تسجيل الدخول",
	LoginRateLimited:   "محاولات كثيرة، يرجى المحاولة لاحقاً",

	LogoutSuccess: "تم تسجيل الخروج بنجاح",
	LogoutFailed:  "خطأ أثناء تسجيل الخروج",

	Authenticated:   "مسجل الدخول",
	Unauthenticated: "غير مسجل الدخول",
	SessionCheck:    "خطأ في التحقق من الجلسة",

	Unauthorized:          "غير مصرح لك بهذا الإجراء",
	PasswordFields:        "جميع الحقول مطلوبة",
	PasswordTooShort:      "يجب أن تكون كلمة المرور الجديدة %d أحرف على الأقل",
	PasswordTooLong:       "كلمة المرور الجديدة طويلة جداً",
	PasswordWeak:          "كلمة المرور الجديدة ضعيفة جداً",
	PasswordWrong:         "كلمة المرور الحالية غير صحيحة",
	PasswordAdminNotFound: "المستخدم غير موجود",
	PasswordUpdateFailed:  "حدث خطأ أثناء تحديث كلمة المرور",
	PasswordChanged:       "تم تغيير كلمة المرور بنجاح",
}

var english = Messages{
	LoginSuccess:       "Logged in successfully",
	LoginMissingFields: "Username and password are required",
	LoginInvalid:       "Invalid username or password",
	LoginSessionFailed: "Could not create a session",
	LoginFailed:        "Login failed",
	LoginRateLimited:   "Too many attempts, please try again later",

	LogoutSuccess: "Logged out successfully",
	LogoutFailed:  "Logout failed",

	Authenticated:   "Logged in",
	Unauthenticated: "Not logged in",
	SessionCheck:    "Could not verify the session",

	Unauthorized:          "You are not authorized to perform this action",
	PasswordFields:        "All fields are required",
	PasswordTooShort:      "The new password must be at least %d characters",
	PasswordTooLong:       "The new password is too long",
	PasswordWeak:          "The new password is too weak",
	PasswordWrong:         "The current password is incorrect",
	PasswordAdminNotFound: "User not found",
	PasswordUpdateFailed:  "Could not update the password",
	PasswordChanged:       "Password changed successfully",
}

// MessagesFor returns the table for locale, falling back to Arabic.
func MessagesFor(locale string) Messages {
	switch strings.ToLower(strings.TrimSpace(locale)) {
	case LocaleEnglish:
		return english
	default:
		return arabic
	}
}

func (m Messages) passwordTooShort(minLen int) string {
	return fmt.Sprintf(m.PasswordTooShort, minLen)
}
