package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Billing   BillingConfig
	Creditor  PartyConfig
	Debtor    PartyConfig
	Paths     PathsConfig
	Converter ConverterConfig
	Overlay   OverlayConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// JWTConfig configuración de JWT. Sin Secret la API no exige token.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BillingConfig constantes de facturación del despliegue.
type BillingConfig struct {
	HourlyWage decimal.Decimal
	TaxRate    decimal.Decimal // porcentaje, ej: 8.1
	Currency   string          // CHF o EUR
	Locale     string          // BCP 47, formato de fechas y montos
	CutoverDay int             // hasta este día (inclusive) se factura el mes anterior
	Language   string          // idioma de los textos del QR-bill
}

// PartyConfig dirección del acreedor o del destinatario.
// Reference y Message solo aplican al acreedor.
type PartyConfig struct {
	IBAN       string
	Name       string
	Street     string
	HouseNo    string
	PostalCode string
	Town       string
	Country    string
	Reference  string
	Message    string
}

// PathsConfig rutas de entrada y salida.
type PathsConfig struct {
	Template  string
	OutputDir string
	Prefix    string
	WorkDir   string
	ExportSVG bool
}

// ConverterConfig conversor externo a PDF.
type ConverterConfig struct {
	Binary          string
	Timeout         time.Duration
	IsolatedProfile bool
}

// OverlayConfig ubicación del QR-bill en el PDF.
type OverlayConfig struct {
	Page   string  // first, last o número de página
	Anchor string  // bottom o top
	Width  float64 // fracción del ancho de página
	Scale  float64 // ampliación del PNG respecto a 72 dpi
}

// flagKeys flags de línea de comandos que pisan la clave de configuración equivalente.
var flagKeys = map[string]string{
	"template":   "PATHS_TEMPLATE",
	"output-dir": "PATHS_OUTPUT_DIR",
	"work-dir":   "PATHS_WORK_DIR",
	"prefix":     "PATHS_PREFIX",
	"export-svg": "PATHS_EXPORT_SVG",
	"soffice":    "CONVERTER_BINARY",
	"timeout":    "CONVERTER_TIMEOUT",
	"page":       "OVERLAY_PAGE",
	"locale":     "BILLING_LOCALE",
	"lang":       "BILLING_LANGUAGE",
	"log-level":  "LOG_LEVEL",
}

// RegisterFlags declara en fs los flags que LoadWithFlags sabe enlazar.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("template", "", "plantilla .odt (PATHS_TEMPLATE)")
	fs.String("output-dir", "", "directorio de salida (PATHS_OUTPUT_DIR)")
	fs.String("work-dir", "", "directorio de temporales (PATHS_WORK_DIR)")
	fs.String("prefix", "", "prefijo del archivo generado (PATHS_PREFIX)")
	fs.Bool("export-svg", false, "guardar también el QR-bill en SVG (PATHS_EXPORT_SVG)")
	fs.String("soffice", "", "binario de LibreOffice (CONVERTER_BINARY)")
	fs.String("timeout", "", "espera máxima de la conversión, ej: 2m (CONVERTER_TIMEOUT)")
	fs.String("page", "", "página del QR-bill: first, last o N (OVERLAY_PAGE)")
	fs.String("locale", "", "locale de fechas y montos, ej: de-CH (BILLING_LOCALE)")
	fs.String("lang", "", "idioma del QR-bill: de, fr, it, en (BILLING_LANGUAGE)")
	fs.String("log-level", "", "trace, debug, info, warn, error (LOG_LEVEL)")
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, BILLING_HOURLY_WAGE, CREDITOR_IBAN, etc.
func Load() (*Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags igual que Load; los flags de fs modificados explícitamente pisan env y archivo.
func LoadWithFlags(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	// También intenta config.env
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.MergeInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: flag %s: %w", name, err)
				}
			}
		}
	}

	r := &reader{v: v}
	cfg := &Config{
		App: AppConfig{
			Env:      r.getString("APP_ENV", "development"),
			Name:     r.getString("APP_NAME", "qrbill-invoicer"),
			LogLevel: r.getString("LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			Secret:     r.getString("JWT_SECRET", ""),
			Expiration: r.getInt("JWT_EXPIRATION_MINUTES", 60),
			Issuer:     r.getString("JWT_ISSUER", "qrbill-invoicer"),
		},
		HTTP: HTTPConfig{
			Host: r.getString("HTTP_HOST", "0.0.0.0"),
			Port: r.getInt("HTTP_PORT", 8080),
		},
		Billing: BillingConfig{
			HourlyWage: r.getDecimal("BILLING_HOURLY_WAGE", "0"),
			TaxRate:    r.getDecimal("BILLING_TAX_RATE", "8.1"),
			Currency:   strings.ToUpper(r.getString("BILLING_CURRENCY", "CHF")),
			Locale:     r.getString("BILLING_LOCALE", "de-CH"),
			CutoverDay: r.getInt("BILLING_CUTOVER_DAY", 15),
			Language:   r.getString("BILLING_LANGUAGE", "de"),
		},
		Creditor: r.getParty("CREDITOR"),
		Debtor:   r.getParty("DEBTOR"),
		Paths: PathsConfig{
			Template:  r.getString("PATHS_TEMPLATE", "Rechnung.odt"),
			OutputDir: r.getString("PATHS_OUTPUT_DIR", "."),
			Prefix:    r.getString("PATHS_PREFIX", "Rechnung"),
			WorkDir:   r.getString("PATHS_WORK_DIR", ""),
			ExportSVG: r.getBool("PATHS_EXPORT_SVG", false),
		},
		Converter: ConverterConfig{
			Binary:          r.getString("CONVERTER_BINARY", "soffice"),
			Timeout:         r.getDuration("CONVERTER_TIMEOUT", 2*time.Minute),
			IsolatedProfile: r.getBool("CONVERTER_ISOLATED_PROFILE", false),
		},
		Overlay: OverlayConfig{
			Page:   strings.ToLower(r.getString("OVERLAY_PAGE", "last")),
			Anchor: strings.ToLower(r.getString("OVERLAY_ANCHOR", "bottom")),
			Width:  r.getFloat("OVERLAY_WIDTH", 1),
			Scale:  r.getFloat("QRBILL_SCALE", 4),
		},
	}
	if err := errors.Join(r.errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica los valores que no dependen de otros paquetes. Las reglas
// del QR-bill (IBAN, referencia, longitudes) las valida qrbill al generar.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logger.ParseLevel(c.App.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL: %w", err))
	}
	if !c.Billing.HourlyWage.IsPositive() {
		errs = append(errs, fmt.Errorf("config: BILLING_HOURLY_WAGE debe ser mayor que cero"))
	}
	if c.Billing.TaxRate.IsNegative() {
		errs = append(errs, fmt.Errorf("config: BILLING_TAX_RATE no puede ser negativa"))
	}
	if c.Billing.Currency != "CHF" && c.Billing.Currency != "EUR" {
		errs = append(errs, fmt.Errorf("config: BILLING_CURRENCY %q no soportada (CHF o EUR)", c.Billing.Currency))
	}
	if c.Billing.CutoverDay < 1 || c.Billing.CutoverDay > 31 {
		errs = append(errs, fmt.Errorf("config: BILLING_CUTOVER_DAY %d fuera de rango (1-31)", c.Billing.CutoverDay))
	}
	if c.Creditor.IBAN == "" || c.Creditor.Name == "" {
		errs = append(errs, fmt.Errorf("config: CREDITOR_IBAN y CREDITOR_NAME son obligatorios"))
	}
	if c.Debtor.Name == "" {
		errs = append(errs, fmt.Errorf("config: DEBTOR_NAME es obligatorio"))
	}
	if c.Paths.Template == "" {
		errs = append(errs, fmt.Errorf("config: PATHS_TEMPLATE es obligatorio"))
	}
	if c.Converter.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config: CONVERTER_TIMEOUT debe ser positivo"))
	}
	if !validPage(c.Overlay.Page) {
		errs = append(errs, fmt.Errorf("config: OVERLAY_PAGE %q inválida (first|last|N)", c.Overlay.Page))
	}
	if c.Overlay.Anchor != "bottom" && c.Overlay.Anchor != "top" {
		errs = append(errs, fmt.Errorf("config: OVERLAY_ANCHOR %q inválido (bottom|top)", c.Overlay.Anchor))
	}
	if c.Overlay.Width <= 0 || c.Overlay.Width > 1 {
		errs = append(errs, fmt.Errorf("config: OVERLAY_WIDTH %v fuera de rango (0, 1]", c.Overlay.Width))
	}
	if c.Overlay.Scale <= 0 {
		errs = append(errs, fmt.Errorf("config: QRBILL_SCALE debe ser positivo"))
	}
	return errors.Join(errs...)
}

func validPage(s string) bool {
	if s == "first" || s == "last" {
		return true
	}
	n, err := strconv.Atoi(s)
	return err == nil && n >= 1
}

// reader lee claves con valor por defecto y acumula los errores de formato.
type reader struct {
	v    *viper.Viper
	errs []error
}

func (r *reader) getString(key, def string) string {
	if r.v.IsSet(key) {
		return strings.TrimSpace(r.v.GetString(key))
	}
	return def
}

func (r *reader) getInt(key string, def int) int {
	s := r.getString(key, "")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q no es un entero", key, s))
		return def
	}
	return n
}

func (r *reader) getFloat(key string, def float64) float64 {
	s := r.getString(key, "")
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q no es un número", key, s))
		return def
	}
	return f
}

func (r *reader) getBool(key string, def bool) bool {
	s := r.getString(key, "")
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q no es booleano", key, s))
		return def
	}
	return b
}

func (r *reader) getDuration(key string, def time.Duration) time.Duration {
	s := r.getString(key, "")
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q no es una duración", key, s))
		return def
	}
	return d
}

func (r *reader) getDecimal(key, def string) decimal.Decimal {
	s := r.getString(key, def)
	d, err := decimal.NewFromString(s)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("config: %s=%q no es un decimal", key, s))
		return decimal.Zero
	}
	return d
}

func (r *reader) getParty(prefix string) PartyConfig {
	k := func(name string) string { return prefix + "_" + name }
	return PartyConfig{
		IBAN:       r.getString(k("IBAN"), ""),
		Name:       r.getString(k("NAME"), ""),
		Street:     r.getString(k("STREET"), ""),
		HouseNo:    r.getString(k("HOUSE_NO"), ""),
		PostalCode: r.getString(k("POSTAL_CODE"), ""),
		Town:       r.getString(k("TOWN"), ""),
		Country:    strings.ToUpper(r.getString(k("COUNTRY"), "CH")),
		Reference:  r.getString(k("REFERENCE"), ""),
		Message:    r.getString(k("MESSAGE"), ""),
	}
}
