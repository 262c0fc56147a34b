package i18n

// arabic maps English interface text to its Arabic translation.
var arabic = map[string]string{
	// Navigation
	"Dashboard":  "لوحة التحكم",
	"Agents":     "الوكلاء",
	"Owners":     "الملاك",
	"Properties": "العقارات",
	"Areas":      "المناطق",
	"Banners":    "اللافتات",
	"Blogs":      "المدونات",
	"Amenities":  "المرافق",
	"Features":   "الميزات",
	"Locations":  "المواقع",
	"Types":      "الأنواع",
	"Contacts":   "رسائل التواصل",
	"Profile":    "الملف الشخصي",

	// Fields and columns
	"Name":        "الاسم",
	"Email":       "البريد الإلكتروني",
	"Phone":       "الهاتف",
	"Password":    "كلمة المرور",
	"Image":       "الصورة",
	"Icon":        "الأيقونة",
	"Title":       "العنوان",
	"Description": "الوصف",
	"Content":     "المحتوى",
	"Link":        "الرابط",
	"Price":       "السعر",
	"Type":        "النوع",
	"Location":    "الموقع",
	"Area":        "المنطقة",
	"Bedrooms":    "غرف النوم",
	"Bathrooms":   "الحمامات",
	"Size":        "المساحة",
	"Status":      "الحالة",
	"Available":   "متاح",
	"Sold":        "مباع",
	"Rented":      "مؤجر",
	"Featured":    "مميز",
	"Date":        "التاريخ",
	"Subject":     "الموضوع",
	"Message":     "الرسالة",
	"English":     "الإنجليزية",
	"Arabic":      "العربية",

	// Actions
	"Actions":         "الإجراءات",
	"Create":          "إنشاء",
	"Edit":            "تعديل",
	"View":            "عرض",
	"Delete":          "حذف",
	"Save":            "حفظ",
	"Cancel":          "إلغاء",
	"Close":           "إغلاق",
	"Import":          "استيراد",
	"Upload":          "رفع",
	"Delete selected": "حذف المحدد",
	"Select all":      "تحديد الكل",
	"Create %s":       "إنشاء %s",
	"Edit %s":         "تعديل %s",
	"View %s":         "عرض %s",
	"Delete %s":       "حذف %s",

	// Tables and dialogs
	"No records found": "لا توجد سجلات",
	"No messages yet":  "لا توجد رسائل بعد",
	"Are you sure you want to delete this record?":                                          "هل أنت متأكد من حذف هذا السجل؟",
	"Are you sure you want to delete the selected records?":                                 "هل أنت متأكد من حذف السجلات المحددة؟",
	"Import a CSV file whose header row names the fields, for example en.name and ar.name.": "استورد ملف CSV يحدد صف العناوين فيه الحقول، مثل en.name و ar.name.",

	// Toasts
	"Created successfully":                  "تم الإنشاء بنجاح",
	"Updated successfully":                  "تم التحديث بنجاح",
	"Deleted successfully":                  "تم الحذف بنجاح",
	"Something went wrong":                  "حدث خطأ ما",
	"Please correct the highlighted fields": "يرجى تصحيح الحقول المحددة",
	"%d of %d items processed successfully": "تمت معالجة %d من %d عناصر بنجاح",
	"No records selected":                   "لم يتم تحديد أي سجلات",
	"The CSV file could not be read":        "تعذرت قراءة ملف CSV",
	"Record not found":                      "السجل غير موجود",

	// Validation
	"%s is required":                   "%s مطلوب",
	"%s must be a valid email address": "%s يجب أن يكون بريدًا إلكترونيًا صالحًا",
	"%s must be a number":              "%s يجب أن يكون رقمًا",
	"%s has an invalid choice":         "%s يحتوي على خيار غير صالح",

	// Authentication
	"Login":                    "تسجيل الدخول",
	"Logout":                   "تسجيل الخروج",
	"Sign in to continue":      "سجّل الدخول للمتابعة",
	"Welcome back, %s":         "مرحبًا بعودتك، %s",
	"You have been signed out": "تم تسجيل خروجك",
	"Your session has expired, please sign in again": "انتهت صلاحية جلستك، يرجى تسجيل الدخول مجددًا",
	"Invalid email or password":                      "البريد الإلكتروني أو كلمة المرور غير صحيحة",
	"Too many login attempts, try again later":       "محاولات تسجيل دخول كثيرة، حاول لاحقًا",
	"You do not have access to this module":          "ليس لديك صلاحية الوصول إلى هذه الوحدة",
	"Page not found":                                 "الصفحة غير موجودة",

	// Dashboard and profile
	"Statistics":              "الإحصائيات",
	"No statistics available": "لا توجد إحصائيات",
	"Profile updated":         "تم تحديث الملف الشخصي",

	// Property detail
	"Details":                                "التفاصيل",
	"Images":                                 "الصور",
	"Floor plans":                            "المخططات",
	"No images yet":                          "لا توجد صور بعد",
	"No floor plans yet":                     "لا توجد مخططات بعد",
	"Image uploaded":                         "تم رفع الصورة",
	"Image deleted":                          "تم حذف الصورة",
	"Floor plan uploaded":                    "تم رفع المخطط",
	"Floor plan deleted":                     "تم حذف المخطط",
	"Location saved":                         "تم حفظ الموقع",
	"Draw the property outline":              "ارسم حدود العقار",
	"The drawn shape is not a valid polygon": "الشكل المرسوم ليس مضلعًا صالحًا",
	"Please choose a file":                   "يرجى اختيار ملف",
	"Only JPEG, PNG and WebP images are accepted": "يُقبل فقط JPEG و PNG و WebP",
	"The image is too large":                      "حجم الصورة كبير جدًا",
	"Latitude":                                    "خط العرض",
	"Longitude":                                   "خط الطول",
}
