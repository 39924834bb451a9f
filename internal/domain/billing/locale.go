// Package billing contiene las reglas de cálculo de la factura: período de
// facturación, totales con redondeo a 5 céntimos y formato de montos.
// Todo es puro: el locale y la fecha se reciben como parámetros.
package billing

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// NumberFormat separadores usados al mostrar montos.
type NumberFormat struct {
	Group   string
	Decimal string
}

// Locale agrupa los datos de presentación de un idioma/región.
type Locale struct {
	Tag    language.Tag
	Number NumberFormat
	months [12]string
}

var (
	monthsDE = [12]string{"Januar", "Februar", "März", "April", "Mai", "Juni", "Juli", "August", "September", "Oktober", "November", "Dezember"}
	monthsFR = [12]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août", "septembre", "octobre", "novembre", "décembre"}
	monthsIT = [12]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno", "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"}
	monthsEN = [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
)

// Convención suiza: apóstrofo tipográfico (U+2019) como separador de miles.
var (
	swissNumber  = NumberFormat{Group: "’", Decimal: "."}
	frSwiss      = NumberFormat{Group: " ", Decimal: ","}
	germanNumber = NumberFormat{Group: ".", Decimal: ","}
	frenchNumber = NumberFormat{Group: " ", Decimal: ","}
	italNumber   = NumberFormat{Group: ".", Decimal: ","}
	englNumber   = NumberFormat{Group: ",", Decimal: "."}
)

// supported: el orden importa, el matcher devuelve el índice del mejor candidato.
var supported = []Locale{
	{Tag: language.MustParse("de-CH"), Number: swissNumber, months: monthsDE},
	{Tag: language.German, Number: germanNumber, months: monthsDE},
	{Tag: language.MustParse("fr-CH"), Number: frSwiss, months: monthsFR},
	{Tag: language.French, Number: frenchNumber, months: monthsFR},
	{Tag: language.MustParse("it-CH"), Number: swissNumber, months: monthsIT},
	{Tag: language.Italian, Number: italNumber, months: monthsIT},
	{Tag: language.English, Number: englNumber, months: monthsEN},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, l := range supported {
		tags[i] = l.Tag
	}
	return language.NewMatcher(tags)
}()

// SwissGerman es el locale por defecto (de-CH).
var SwissGerman = supported[0]

// ParseLocale interpreta un tag BCP 47 ("de-CH", "fr", "en-GB") y elige el
// locale soportado más cercano. Error si el idioma no tiene equivalente.
func ParseLocale(s string) (Locale, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return Locale{}, fmt.Errorf("billing: locale %q inválido: %w", s, err)
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Locale{}, fmt.Errorf("billing: locale %q no soportado", s)
	}
	return supported[idx], nil
}

// MonthName nombre localizado del mes.
func (l Locale) MonthName(m time.Month) string {
	if l.months[0] == "" {
		return SwissGerman.months[m-1]
	}
	return l.months[m-1]
}

// MonthYear etiqueta "Mes Año" del período.
func (l Locale) MonthYear(year int, m time.Month) string {
	return fmt.Sprintf("%s %d", l.MonthName(m), year)
}
