package types

// LocalizedText carries the English and Arabic renditions of a user-facing string.
type LocalizedText struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

func Text(en, ar string) LocalizedText {
	return LocalizedText{EN: en, AR: ar}
}

func (t LocalizedText) IsZero() bool {
	return t.EN == "" && t.AR == ""
}
