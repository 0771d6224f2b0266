package query

// domainSynonyms maps query terms to semantically related terms that appear
// in the transcripts. Expansion is additive: the original term is always
// searched alongside its relations.
var domainSynonyms = map[string][]string{
	"administrative": {"dean", "master", "head", "bursar"},
	"college":        {"university", "oxford", "magdalen", "magdalene"},
	"school":         {"college", "boarding", "wyvern"},
	"teacher":        {"tutor", "don", "kirkpatrick"},
	"money":          {"funds", "allowance", "debt", "account"},
	"poor":           {"poverty", "broke", "debt"},
	"worried":        {"anxious", "concerned", "afraid", "trouble"},
	"confidence":     {"confident", "assurance", "certain"},
	"lacking":        {"without", "lacked", "short"},
	"friend":         {"companion", "arthur", "greeves"},
	"father":         {"papy", "albert"},
	"brother":        {"warnie", "warren"},
	"war":            {"front", "trenches", "regiment", "somme"},
	"wounded":        {"injured", "shrapnel", "hospital"},
	"writing":        {"wrote", "letters", "diary", "manuscript"},
	"book":           {"books", "reading", "volume"},
	"faith":          {"christian", "christianity", "church", "belief"},
	"atheist":        {"atheism", "unbeliever", "materialist"},
	"fellowship":     {"fellow", "election", "appointment"},
	"exam":           {"exams", "examination", "scholarship", "responsions"},
	"home":           {"belfast", "ireland", "leeborough"},
	"sick":           {"ill", "illness", "fever"},
	"christmas":      {"holiday", "present", "gift"},
}
