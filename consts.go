package zplrender

// ZPL markers recognised by the interpreter
const (
	// Начало любой команды
	FieldStart = "^"

	// Конец поля: сегментация режет именно по этой паре символов
	FieldSeparator = "FS"

	// Позиция поля (field origin / field typeset)
	FieldOriginTag  = "FO"
	FieldTypesetTag = "FT"

	// Данные поля ^FD ... ^FS
	FieldDataOpening = "^FD"
	FieldDataClosing = "^FS"

	// Комментарий, не отображается
	CommentTag = "^FX"

	// Рамка ^GBw,h,t,c,r
	BoxTag = "GB"

	// Определение штрихкода ^B<type><params>^ ; ^BY задаёт умолчания и штрихкодом не является
	BarcodeTag        = "^B"
	BarcodeDefaultsID = 'Y'

	// Минимальная длина строки параметров штрихкода
	barcodeMinParams = 6
	// Минимум полей для построения опций
	barcodeMinFields = 5

	// Индекс свойства (после split по "^"), где ищутся рамка и шрифт
	propertyIndex = 2
)
