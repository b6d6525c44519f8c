package i18n

import "golang.org/x/text/language"

var (
	english = language.English
	arabic  = language.Arabic
	italian = language.Italian
)

var copyStrings = map[language.Tag]map[string]string{
	english: {
		"app.title":             "Charity Tracker",
		"form.heading":          "Record your donation",
		"form.name":             "Name",
		"form.name_placeholder": "Any name or initial is fine",
		"form.amount":           "Amount",
		"form.submit":           "Submit",
		"form.confirm":          "Please double-check the amount before submitting.",
		"form.success":          "Donation recorded successfully",
		"form.thanks":           "Thank you, %s! %s recorded.",
		"error.invalid":         "Please enter a name and a positive amount.",
		"error.server":          "Something went wrong, please try again.",
		"error.rate_limited":    "Too many requests, please slow down.",
		"admin.title":           "Donations dashboard",
		"admin.login":           "Log in",
		"admin.password":        "Password",
		"admin.logout":          "Log out",
		"admin.invalid":         "Invalid password",
		"admin.total":           "Total donations",
		"admin.donors":          "Number of donors",
		"admin.average":         "Average donation",
		"admin.last":            "Last donation",
		"admin.last_none":       "No donations yet",
		"admin.month":           "Month",
		"admin.count":           "Donations",
		"admin.amount":          "Total",
		"admin.monthly":         "Monthly donations",
		"admin.empty":           "No donations recorded yet.",
		"admin.donor_count":     "%d donors",
	},
	arabic: {
		"app.title":             "متابعة التبرعات",
		"form.heading":          "قم بتسجيل قيمة التبرع",
		"form.name":             "الاسم",
		"form.name_placeholder": "اختياري يمكنك كتابة أي حرف",
		"form.amount":           "القيمة",
		"form.submit":           "التسجيل",
		"form.confirm":          "تأكيد القيمة - يرجى التأكد من الرقم",
		"form.success":          "تم التسجيل بنجاح",
		"form.thanks":           "جزاكم الله خيرًا يا %s! تم تسجيل %s.",
		"error.invalid":         "الرجاء إدخال الاسم وقيمة موجبة",
		"error.server":          "حدث خطأ الرجاء المحاولة مرة أخرى",
		"error.rate_limited":    "طلبات كثيرة، الرجاء الانتظار قليلاً",
		"admin.title":           "لوحة التبرعات",
		"admin.login":           "تسجيل الدخول",
		"admin.password":        "كلمة المرور",
		"admin.logout":          "تسجيل الخروج",
		"admin.invalid":         "كلمة المرور غير صحيحة",
		"admin.total":           "إجمالي التبرعات",
		"admin.donors":          "عدد المتبرعين",
		"admin.average":         "متوسط التبرع",
		"admin.last":            "آخر تبرع",
		"admin.last_none":       "لا توجد تبرعات بعد",
		"admin.month":           "الشهر",
		"admin.count":           "عدد التبرعات",
		"admin.amount":          "المجموع",
		"admin.monthly":         "التبرعات الشهرية",
		"admin.empty":           "لم يتم تسجيل أي تبرعات بعد",
		"admin.donor_count":     "%d متبرع",
	},
	italian: {
		"app.title":             "Registro donazioni",
		"form.heading":          "Registra la tua donazione",
		"form.name":             "Nome",
		"form.name_placeholder": "Va bene anche solo un'iniziale",
		"form.amount":           "Importo",
		"form.submit":           "Registra",
		"form.confirm":          "Controlla l'importo prima di inviare.",
		"form.success":          "Donazione registrata",
		"form.thanks":           "Grazie, %s! %s registrati.",
		"error.invalid":         "Inserisci un nome e un importo positivo.",
		"error.server":          "Qualcosa è andato storto, riprova.",
		"error.rate_limited":    "Troppe richieste, riprova tra poco.",
		"admin.title":           "Riepilogo donazioni",
		"admin.login":           "Accedi",
		"admin.password":        "Password",
		"admin.logout":          "Esci",
		"admin.invalid":         "Password non valida",
		"admin.total":           "Totale donazioni",
		"admin.donors":          "Numero di donatori",
		"admin.average":         "Donazione media",
		"admin.last":            "Ultima donazione",
		"admin.last_none":       "Ancora nessuna donazione",
		"admin.month":           "Mese",
		"admin.count":           "Donazioni",
		"admin.amount":          "Totale",
		"admin.monthly":         "Donazioni mensili",
		"admin.empty":           "Nessuna donazione registrata.",
		"admin.donor_count":     "%d donatori",
	},
}

var monthNames = map[language.Tag][12]string{
	english: {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	arabic:  {"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو", "يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر"},
	italian: {"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"},
}
