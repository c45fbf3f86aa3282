package voice

var supertonicVoices = []Descriptor{
	{Name: "M1", Language: "en", Gender: Male, Description: "English Male M1"},
	{Name: "M2", Language: "en", Gender: Male, Description: "English Male M2"},
	{Name: "M3", Language: "en", Gender: Male, Description: "English Male M3"},
	{Name: "M4", Language: "en", Gender: Male, Description: "English Male M4"},
	{Name: "M5", Language: "en", Gender: Male, Description: "English Male M5"},
	{Name: "F1", Language: "en", Gender: Female, Description: "English Female F1"},
	{Name: "F2", Language: "en", Gender: Female, Description: "English Female F2"},
	{Name: "F3", Language: "en", Gender: Female, Description: "English Female F3"},
	{Name: "F4", Language: "en", Gender: Female, Description: "English Female F4"},
	{Name: "F5", Language: "en", Gender: Female, Description: "English Female F5"},
}

// Kokoro names follow [language][gender]_[name].
var kokoroVoices = []Descriptor{
	// American English
	{Name: "af_heart", Language: "en", Gender: Female, Description: "American Female Heart"},
	{Name: "af_bella", Language: "en", Gender: Female, Description: "American Female Bella"},
	{Name: "af_nicole", Language: "en", Gender: Female, Description: "American Female Nicole"},
	{Name: "af_sarah", Language: "en", Gender: Female, Description: "American Female Sarah"},
	{Name: "af_amber", Language: "en", Gender: Female, Description: "American Female Amber"},
	{Name: "am_adam", Language: "en", Gender: Male, Description: "American Male Adam"},
	{Name: "am_michael", Language: "en", Gender: Male, Description: "American Male Michael"},
	{Name: "am_john", Language: "en", Gender: Male, Description: "American Male John"},

	// British English
	{Name: "bf_emma", Language: "en", Gender: Female, Description: "British Female Emma"},
	{Name: "bf_olivia", Language: "en", Gender: Female, Description: "British Female Olivia"},
	{Name: "bm_lewis", Language: "en", Gender: Male, Description: "British Male Lewis"},
	{Name: "bm_james", Language: "en", Gender: Male, Description: "British Male James"},

	// Japanese
	{Name: "jf_nanako", Language: "ja", Gender: Female, Description: "Japanese Female Nanako"},
	{Name: "jf_akari", Language: "ja", Gender: Female, Description: "Japanese Female Akari"},
	{Name: "jm_hayato", Language: "ja", Gender: Male, Description: "Japanese Male Hayato"},
	{Name: "jm_daichi", Language: "ja", Gender: Male, Description: "Japanese Male Daichi"},

	// Korean
	{Name: "kf_minji", Language: "ko", Gender: Female, Description: "Korean Female Minji"},
	{Name: "kf_soyeon", Language: "ko", Gender: Female, Description: "Korean Female Soyeon"},
	{Name: "km_junho", Language: "ko", Gender: Male, Description: "Korean Male Junho"},
	{Name: "km_sung", Language: "ko", Gender: Male, Description: "Korean Male Sung"},

	// Chinese
	{Name: "zf_xiaoxiao", Language: "zh", Gender: Female, Description: "Chinese Female Xiaoxiao"},
	{Name: "zf_xiaowan", Language: "zh", Gender: Female, Description: "Chinese Female Xiaowan"},
	{Name: "zm_xiaoyu", Language: "zh", Gender: Male, Description: "Chinese Male Xiaoyu"},
	{Name: "zm_yunxi", Language: "zh", Gender: Male, Description: "Chinese Male Yunxi"},

	// Spanish
	{Name: "ef_carmen", Language: "es", Gender: Female, Description: "Spanish Female Carmen"},
	{Name: "ef_rosa", Language: "es", Gender: Female, Description: "Spanish Female Rosa"},
	{Name: "em_carlos", Language: "es", Gender: Male, Description: "Spanish Male Carlos"},
	{Name: "em_juan", Language: "es", Gender: Male, Description: "Spanish Male Juan"},

	// French
	{Name: "ff_léa", Language: "fr", Gender: Female, Description: "French Female Léa"},
	{Name: "ff_marie", Language: "fr", Gender: Female, Description: "French Female Marie"},
	{Name: "fm_bruno", Language: "fr", Gender: Male, Description: "French Male Bruno"},
	{Name: "fm_jean", Language: "fr", Gender: Male, Description: "French Male Jean"},

	// German
	{Name: "gf_anna", Language: "de", Gender: Female, Description: "German Female Anna"},
	{Name: "gf_birgitta", Language: "de", Gender: Female, Description: "German Female Birgitta"},
	{Name: "gm_lars", Language: "de", Gender: Male, Description: "German Male Lars"},
	{Name: "gm_markus", Language: "de", Gender: Male, Description: "German Male Markus"},

	// Italian
	{Name: "if_giulia", Language: "it", Gender: Female, Description: "Italian Female Giulia"},
	{Name: "if_paola", Language: "it", Gender: Female, Description: "Italian Female Paola"},
	{Name: "im_marco", Language: "it", Gender: Male, Description: "Italian Male Marco"},
	{Name: "im_stefano", Language: "it", Gender: Male, Description: "Italian Male Stefano"},

	// Portuguese
	{Name: "pf_helena", Language: "pt", Gender: Female, Description: "Portuguese Female Helena"},
	{Name: "pf_fernanda", Language: "pt", Gender: Female, Description: "Portuguese Female Fernanda"},
	{Name: "pm_paulo", Language: "pt", Gender: Male, Description: "Portuguese Male Paulo"},
	{Name: "pm_sergio", Language: "pt", Gender: Male, Description: "Portuguese Male Sergio"},
}
