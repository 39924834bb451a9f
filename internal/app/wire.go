// Package app arma el pipeline de facturación a partir de la configuración.
// Lo usan tanto la CLI como el servidor HTTP.
package app

import (
	"fmt"

	"github.com/jhoicas/qrbill-invoicer/internal/application/invoicing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/converter"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/odt"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/pdfstamp"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/qrbill"
	"github.com/jhoicas/qrbill-invoicer/pkg/config"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

// NewPipeline construye el pipeline con las implementaciones reales
// (ODT, LibreOffice, QR-bill, pdfcpu). Falla si la configuración no es coherente.
func NewPipeline(cfg *config.Config, log *logger.Logger) (*invoicing.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := billing.ParseLocale(cfg.Billing.Locale)
	if err != nil {
		return nil, fmt.Errorf("app: BILLING_LOCALE: %w", err)
	}
	lang, err := qrbill.ParseLanguage(cfg.Billing.Language)
	if err != nil {
		return nil, fmt.Errorf("app: BILLING_LANGUAGE: %w", err)
	}
	page, err := pdfstamp.ParsePageSelector(cfg.Overlay.Page)
	if err != nil {
		return nil, fmt.Errorf("app: OVERLAY_PAGE: %w", err)
	}
	anchor, err := pdfstamp.ParseAnchor(cfg.Overlay.Anchor)
	if err != nil {
		return nil, fmt.Errorf("app: OVERLAY_ANCHOR: %w", err)
	}
	if err := qrbill.ValidateIBAN(cfg.Creditor.IBAN); err != nil {
		return nil, fmt.Errorf("app: CREDITOR_IBAN: %w", err)
	}

	creditor := entity.Company{
		Address:   address(cfg.Creditor),
		IBAN:      cfg.Creditor.IBAN,
		Reference: cfg.Creditor.Reference,
		Message:   cfg.Creditor.Message,
	}
	params := billing.InvoiceParams{
		HourlyWage: cfg.Billing.HourlyWage,
		TaxRate:    cfg.Billing.TaxRate,
		Recipient:  address(cfg.Debtor),
		Currency:   cfg.Billing.Currency,
		CutoverDay: cfg.Billing.CutoverDay,
		Locale:     loc,
	}
	settings := invoicing.Settings{
		TemplatePath: cfg.Paths.Template,
		OutputDir:    cfg.Paths.OutputDir,
		Prefix:       cfg.Paths.Prefix,
		WorkDir:      cfg.Paths.WorkDir,
		ExportSVG:    cfg.Paths.ExportSVG,
	}

	log.Debug().
		Str("locale", loc.Tag.String()).
		Str("lang", string(lang)).
		Str("page", page.String()).
		Str("anchor", string(anchor)).
		Str("template", settings.TemplatePath).
		Msg("pipeline configurado")

	return invoicing.NewPipeline(
		params,
		settings,
		odt.NewFiller(loc),
		converter.NewLibreOffice(converter.Config{
			Binary:          cfg.Converter.Binary,
			Timeout:         cfg.Converter.Timeout,
			IsolatedProfile: cfg.Converter.IsolatedProfile,
		}),
		qrbill.NewEncoder(creditor, qrbill.WithLanguage(lang), qrbill.WithScale(cfg.Overlay.Scale)),
		pdfstamp.NewStamper(pdfstamp.Options{Page: page, Anchor: anchor, WidthFraction: cfg.Overlay.Width}),
		log,
	), nil
}

func address(p config.PartyConfig) entity.Address {
	return entity.Address{
		Name:       p.Name,
		Street:     p.Street,
		HouseNo:    p.HouseNo,
		PostalCode: p.PostalCode,
		Town:       p.Town,
		Country:    p.Country,
	}
}
