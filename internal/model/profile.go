package model

// Profile is the engineer identity held in memory for one user.
type Profile struct {
	Name        string `json:"name"`
	City        string `json:"city,omitempty"`
	Address     string `json:"address,omitempty"`
	Email       string `json:"email,omitempty"`
	Institution string `json:"institution,omitempty"`
	ProfilePic  string `json:"profile_pic,omitempty"`
	IDNumber    string `json:"id_number"`
}

// Language is a supported translation target.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SupportedLanguages lists the translation targets in display order.
var SupportedLanguages = []Language{
	{Code: "English", Name: "English"},
	{Code: "Urdu", Name: "اردو"},
	{Code: "Hindi", Name: "हिन्दी"},
	{Code: "Punjabi", Name: "ਪੰਜਾਬੀ"},
	{Code: "Pashto", Name: "پښتو"},
	{Code: "Chinese", Name: "中文"},
}

// LookupLanguage finds a supported language by code.
func LookupLanguage(code string) (Language, bool) {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// ElectricalTemplates are starter prompts offered on an empty conversation.
var ElectricalTemplates = []string{
	"What is electric current?",
	"Define Voltage and potential difference",
	"What is Power Factor and how to improve it?",
	"Importance of Earthing in electrical systems",
	"Explain the working of a Refrigerator",
	"Generate a diagram of a simple series circuit",
}
