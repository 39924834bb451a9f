package qrbill

import (
	"fmt"

	"golang.org/x/text/language"
)

// Language idioma de los textos impresos en el QR-bill.
type Language string

const (
	German  Language = "de"
	French  Language = "fr"
	Italian Language = "it"
	English Language = "en"
)

var languageMatcher = language.NewMatcher([]language.Tag{
	language.German, language.French, language.Italian, language.English,
})

// ParseLanguage acepta etiquetas BCP 47 ("de", "fr-CH", "it") y las reduce a un idioma soportado.
func ParseLanguage(s string) (Language, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return "", fmt.Errorf("qrbill: idioma %q: %w", s, err)
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("qrbill: idioma %q no soportado", s)
	}
	return []Language{German, French, Italian, English}[idx], nil
}

type labels struct {
	Receipt         string
	PaymentPart     string
	AccountPayable  string
	Reference       string
	AdditionalInfo  string
	PayableBy       string
	PayableByBlank  string
	Currency        string
	Amount          string
	AcceptancePoint string
}

var labelsByLanguage = map[Language]labels{
	German: {
		Receipt:         "Empfangsschein",
		PaymentPart:     "Zahlteil",
		AccountPayable:  "Konto / Zahlbar an",
		Reference:       "Referenz",
		AdditionalInfo:  "Zusätzliche Informationen",
		PayableBy:       "Zahlbar durch",
		PayableByBlank:  "Zahlbar durch (Name/Adresse)",
		Currency:        "Währung",
		Amount:          "Betrag",
		AcceptancePoint: "Annahmestelle",
	},
	French: {
		Receipt:         "Récépissé",
		PaymentPart:     "Section paiement",
		AccountPayable:  "Compte / Payable à",
		Reference:       "Référence",
		AdditionalInfo:  "Informations supplémentaires",
		PayableBy:       "Payable par",
		PayableByBlank:  "Payable par (nom/adresse)",
		Currency:        "Monnaie",
		Amount:          "Montant",
		AcceptancePoint: "Point de dépôt",
	},
	Italian: {
		Receipt:         "Ricevuta",
		PaymentPart:     "Sezione pagamento",
		AccountPayable:  "Conto / Pagabile a",
		Reference:       "Riferimento",
		AdditionalInfo:  "Informazioni supplementari",
		PayableBy:       "Pagabile da",
		PayableByBlank:  "Pagabile da (nome/indirizzo)",
		Currency:        "Valuta",
		Amount:          "Importo",
		AcceptancePoint: "Punto di accettazione",
	},
	English: {
		Receipt:         "Receipt",
		PaymentPart:     "Payment part",
		AccountPayable:  "Account / Payable to",
		Reference:       "Reference",
		AdditionalInfo:  "Additional information",
		PayableBy:       "Payable by",
		PayableByBlank:  "Payable by (name/address)",
		Currency:        "Currency",
		Amount:          "Amount",
		AcceptancePoint: "Acceptance point",
	},
}

func labelsFor(l Language) labels {
	if lb, ok := labelsByLanguage[l]; ok {
		return lb
	}
	return labelsByLanguage[German]
}
