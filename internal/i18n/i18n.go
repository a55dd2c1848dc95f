// Package i18n holds the bot's localized string tables. English is the
// fallback for every key.
package i18n

import "fmt"

var strings = map[string]map[string]string{
	"en": {
		"welcome":           "Welcome! Send /upload to share a file or /help to see what I can do.",
		"help":              "Commands:\n/upload - upload a file\n/myfiles - your files\n/search - find files\n/language - change language\n/myref - your referral link\n/cancel - cancel the current operation",
		"send_file":         "Send the file you want to share.",
		"invalid_file":      "That doesn't look like a file. Send a document, photo, video or audio.",
		"file_too_large":    "File too large. The maximum size is %d MB.",
		"file_received":     "Got it: %s (%s). Now pick a category.",
		"select_category":   "Select a category:",
		"select_subcategory": "Select a subcategory:",
		"select_format":     "Select a format:",
		"enter_source":      "Send the source URL for this file, or skip.",
		"enter_filename":    "Send a display name for the file, or skip to keep the original.",
		"enter_tags":        "Send tags separated by commas, or skip.",
		"set_password":      "Protect this file with a password?",
		"enter_password":    "Send the password for this file.",
		"processing_file":   "Processing your file...",
		"file_uploaded":     "File uploaded successfully!",
		"share_link":        "Share link: %s",
		"upload_cancelled":  "Upload cancelled. Nothing was saved.",
		"error_occurred":    "An error occurred. Please try again.",
		"file_not_found":    "File not found. The link may be wrong or expired.",
		"enter_dl_password": "This file is password protected. Send the password.",
		"incorrect_password": "Incorrect password.",
		"too_many_attempts": "Too many wrong attempts. Open the share link again to retry.",
		"downloading_file":  "Sending your file...",
		"file_sent":         "Here is your file. Enjoy!",
		"upload_denied":     "You are not allowed to upload files.",
		"not_subscribed":    "Please join the required channels first, then press Verify.",
		"check_subscription": "Verify",
		"cancel_button":     "Cancel",
		"skip_button":       "Skip",
		"yes_button":        "Yes",
		"no_button":         "No",
		"try_again":         "Try again",
		"search_prompt":     "Search by:",
		"search_by_name":    "Name",
		"search_by_tag":     "Tag",
		"search_by_category": "Category",
		"search_by_format":  "Format",
		"enter_search_query": "Send your search text.",
		"no_results":        "Nothing found.",
		"results_header":    "Found %d file(s):",
		"my_files_empty":    "You haven't uploaded any files yet.",
		"my_files_header":   "Your files:",
		"language_prompt":   "Choose your language:",
		"language_set":      "Language updated.",
		"referral":          "Your referral link:\n%s\nUsers joined through it: %d",
		"cancelled":         "Operation cancelled.",
		"nothing_to_cancel": "Nothing to cancel.",
		"admin_only":        "This command is for administrators.",
		"broadcast_prompt":  "Send the message to broadcast.",
		"broadcast_queued":  "Broadcast queued for %d user(s).",
		"downloaded_notice": "Your file '%s' was downloaded by %s.",
		"stats":             "Users: %d\nFiles: %d\nDownloads: %d\nStorage used: %s",
		"backup_done":       "Backup created: %s (%s)",
		"backup_failed":     "Backup failed: %s",
	},
	"ar": {
		"welcome":           "أهلاً بك! أرسل ‎/upload لمشاركة ملف أو ‎/help لعرض الأوامر.",
		"help":              "الأوامر:\n/upload - رفع ملف\n/myfiles - ملفاتك\n/search - بحث عن ملفات\n/language - تغيير اللغة\n/myref - رابط الإحالة\n/cancel - إلغاء العملية الحالية",
		"send_file":         "أرسل الملف الذي تريد مشاركته.",
		"invalid_file":      "هذا ليس ملفاً. أرسل مستنداً أو صورة أو فيديو أو ملفاً صوتياً.",
		"file_too_large":    "الملف كبير جداً. الحد الأقصى %d ميغابايت.",
		"file_received":     "تم الاستلام: %s (%s). اختر التصنيف الآن.",
		"select_category":   "اختر التصنيف:",
		"select_subcategory": "اختر التصنيف الفرعي:",
		"select_format":     "اختر الصيغة:",
		"enter_source":      "أرسل رابط المصدر لهذا الملف، أو تخطَّ.",
		"enter_filename":    "أرسل اسماً للملف، أو تخطَّ للاحتفاظ بالاسم الأصلي.",
		"enter_tags":        "أرسل الوسوم مفصولة بفواصل، أو تخطَّ.",
		"set_password":      "هل تريد حماية الملف بكلمة مرور؟",
		"enter_password":    "أرسل كلمة المرور لهذا الملف.",
		"processing_file":   "جارٍ معالجة الملف...",
		"file_uploaded":     "تم رفع الملف بنجاح!",
		"share_link":        "رابط المشاركة: %s",
		"upload_cancelled":  "تم إلغاء الرفع. لم يتم حفظ شيء.",
		"error_occurred":    "حدث خطأ. حاول مرة أخرى.",
		"file_not_found":    "الملف غير موجود. قد يكون الرابط خاطئاً أو منتهي الصلاحية.",
		"enter_dl_password": "هذا الملف محمي بكلمة مرور. أرسل كلمة المرور.",
		"incorrect_password": "كلمة المرور غير صحيحة.",
		"too_many_attempts": "محاولات خاطئة كثيرة. افتح رابط المشاركة مجدداً للمحاولة.",
		"downloading_file":  "جارٍ إرسال الملف...",
		"file_sent":         "هذا ملفك. بالتوفيق!",
		"upload_denied":     "غير مسموح لك برفع الملفات.",
		"not_subscribed":    "انضم إلى القنوات المطلوبة أولاً ثم اضغط تحقق.",
		"check_subscription": "تحقق",
		"cancel_button":     "إلغاء",
		"skip_button":       "تخطي",
		"yes_button":        "نعم",
		"no_button":         "لا",
		"try_again":         "حاول مجدداً",
		"search_prompt":     "ابحث حسب:",
		"search_by_name":    "الاسم",
		"search_by_tag":     "الوسم",
		"search_by_category": "التصنيف",
		"search_by_format":  "الصيغة",
		"enter_search_query": "أرسل نص البحث.",
		"no_results":        "لا توجد نتائج.",
		"results_header":    "تم العثور على %d ملف:",
		"my_files_empty":    "لم ترفع أي ملفات بعد.",
		"my_files_header":   "ملفاتك:",
		"language_prompt":   "اختر لغتك:",
		"language_set":      "تم تحديث اللغة.",
		"referral":          "رابط الإحالة الخاص بك:\n%s\nعدد المنضمين عبره: %d",
		"cancelled":         "تم إلغاء العملية.",
		"nothing_to_cancel": "لا يوجد ما يُلغى.",
		"admin_only":        "هذا الأمر للمشرفين فقط.",
		"broadcast_prompt":  "أرسل الرسالة المراد بثها.",
		"broadcast_queued":  "تمت جدولة البث إلى %d مستخدم.",
		"downloaded_notice": "تم تنزيل ملفك '%s' بواسطة %s.",
		"stats":             "المستخدمون: %d\nالملفات: %d\nالتنزيلات: %d\nالمساحة المستخدمة: %s",
		"backup_done":       "تم إنشاء نسخة احتياطية: %s (%s)",
		"backup_failed":     "فشل النسخ الاحتياطي: %s",
	},
}

// T returns the localized string for key, formatted with args.
func T(lang, key string, args ...interface{}) string {
	table, ok := strings[lang]
	if !ok {
		table = strings["en"]
	}
	s, ok := table[key]
	if !ok {
		s, ok = strings["en"][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return s
	}
	return fmt.Sprintf(s, args...)
}
