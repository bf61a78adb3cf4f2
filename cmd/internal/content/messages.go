package content

import "strings"

// Messages holds the user-facing strings of the content endpoints.
type Messages struct {
	Loaded              string
	SettingsSaved       string
	AnnouncementAdded   string
	AnnouncementDeleted string
	AnnouncementMissing string
	Invalid             string
	ServerError         string
}

var arabic = Messages{
	Loaded:              "تم جلب البيانات بنجاح",
	SettingsSaved:       "تم حفظ الإعدادات بنجاح",
	AnnouncementAdded:   "تمت إضافة الإعلان بنجاح",
	AnnouncementDeleted: "تم حذف الإعلان بنجاح",
	AnnouncementMissing: "الإعلان غير موجود",
	Invalid:             "البيانات المدخلة غير صالحة",
	ServerError:         "حدث خطأ في الخادم",
}

var english = Messages{
	Loaded:              "Loaded",
	SettingsSaved:       "Settings saved",
	AnnouncementAdded:   "Announcement added",
	AnnouncementDeleted: "Announcement deleted",
	AnnouncementMissing: "Announcement not found",
	Invalid:             "Invalid input",
	ServerError:         "Internal server error",
}

// MessagesFor returns the table for locale, falling back to Arabic.
func MessagesFor(locale string) Messages {
	if strings.EqualFold(strings.TrimSpace(locale), "en") {
		return english
	}
	return arabic
}
