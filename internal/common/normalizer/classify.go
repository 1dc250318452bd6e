package normalizer

import (
	"strings"
	"unicode"
)

// CategoryOther is assigned when no rule matches.
const CategoryOther = "Other"

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules are evaluated in order and the first match wins, so a
// "sales engineer" lands in IT & Technology rather than Sales & Marketing.
// Keywords must be lowercase.
var categoryRules = []categoryRule{
	{"Healthcare", []string{
		"nurse", "doctor", "medical", "health", "hospital", "clinic",
		"pharmacy", "pharmacist", "therapist", "healthcare", "dentist",
		"physician", "clinical", "patient", "treatment", "nursing",
		"midwife", "radiographer", "lab technician",
	}},
	{"IT & Technology", []string{
		"developer", "programmer", "software", "system", "network",
		"database", "web", "technology", "computer", "digital", "cyber",
		"data", "analyst", "technical", "engineer", "coding",
		"programming", "javascript", "python", "java", "html", "css",
	}},
	{"Education & Training", []string{
		"teacher", "instructor", "education", "training", "academic",
		"school", "university", "lecturer", "professor", "tutor",
		"educational", "curriculum", "learning", "student", "teaching",
		"trainer", "facilitator",
	}},
	{"Finance & Banking", []string{
		"accountant", "finance", "banking", "financial", "audit",
		"budget", "accounting", "economist", "treasurer", "cashier",
		"credit", "loan", "investment", "tax", "bookkeeper", "payroll",
	}},
	{"Sales & Marketing", []string{
		"sales", "marketing", "market", "customer", "client",
		"business development", "promotion", "advertising", "brand",
		"retail", "commercial", "revenue", "campaign",
	}},
	{"Human Resources", []string{
		"human resources", "hr", "recruitment", "talent", "personnel",
		"employee", "benefits", "compensation", "workforce",
	}},
	{"Engineering", []string{
		"engineering", "mechanical", "electrical", "civil",
		"construction", "architect", "maintenance", "repair",
		"installation", "infrastructure",
	}},
	{"Administration", []string{
		"administrator", "admin", "secretary", "clerk", "assistant",
		"receptionist", "office", "administrative", "coordinator",
		"data entry", "filing",
	}},
	{"Management", []string{
		"manager", "director", "supervisor", "chief", "executive",
		"leadership", "team lead", "management", "operations",
		"strategic", "ceo", "coo", "cfo",
	}},
	{"Agriculture", []string{
		"agriculture", "farming", "farmer", "agricultural", "crop",
		"livestock", "veterinary", "agronomy", "irrigation", "rural",
		"extension officer",
	}},
	{"Legal", []string{
		"lawyer", "legal", "attorney", "law", "court", "judicial",
		"paralegal", "compliance", "contract", "litigation",
	}},
	{"NGO & Development", []string{
		"ngo", "development", "community", "humanitarian", "volunteer",
		"nonprofit", "charity", "aid", "relief", "donor", "grant",
		"social worker", "project officer",
	}},
	{"Consulting", []string{
		"consultant", "consulting", "advisory", "specialist",
		"freelance", "contractor", "consultancy",
	}},
	{"Transportation & Logistics", []string{
		"driver", "transport", "logistics", "delivery", "shipping",
		"warehouse", "supply chain", "distribution", "fleet", "cargo",
	}},
	{"Security", []string{
		"security", "guard", "protection", "safety", "surveillance",
		"emergency",
	}},
}

// Classify assigns a job category from its title, description and company
// name. Keywords of three characters or fewer only match whole words, so
// acronyms like "hr" and "tax" do not fire inside longer words.
func Classify(title, description, company string) string {
	text := strings.ToLower(title + " " + description + " " + company)
	words := wordSet(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if len(kw) <= 3 {
				if _, ok := words[kw]; ok {
					return rule.name
				}
				continue
			}
			if strings.Contains(text, kw) {
				return rule.name
			}
		}
	}
	return CategoryOther
}

func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = struct{}{}
	}
	return set
}
