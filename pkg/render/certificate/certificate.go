// Package certificate implements the participation certificate: a column of
// centered text blocks laid out with a running vertical cursor, followed by
// two signature columns.
package certificate

import (
	"context"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/osumercury/badgemaker/pkg/badge"
	"github.com/osumercury/badgemaker/pkg/errors"
	"github.com/osumercury/badgemaker/pkg/fonts"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
)

// Name is the registry key.
const Name = "certificate"

// ParticipationOverride is the extra-data key that replaces the
// participation sentence on a single certificate.
const ParticipationOverride = "text-participation"

// Property keys.
const (
	PropCertification     = "certification"
	PropParticipation     = "participation"
	PropAdvisorName       = "advisor-name"
	PropAdvisorTitle      = "advisor-title"
	PropPresidentName     = "president-name"
	PropPresidentTitle    = "president-title"
	PropCompetitionTitle  = "competition-title"
	PropHostTitle         = "host-title"
	PropHostInstitution   = "host-institution"
	PropDateAndLocation   = "date-and-location"
	PropPathToLogo        = "path-to-logo"
	PropPathToBackground  = "path-to-background"
	PropBackgroundHeight  = "background-height"
	PropTextBackground    = "text-background"
	PropPaddingTop        = "padding-top"
	PropMainTextHeight    = "main-text-height"
	PropNameTextHeight    = "name-text-height"
	PropInstitutionHeight = "institution-height"
	PropTitleHeight       = "title-height"
	PropDateTextHeight    = "date-text-height"
	PropStaffNameHeight   = "staff-name-height"
	PropStaffTitleHeight  = "staff-title-height"
	PropSignaturesPos     = "signatures-position"
	PropLogoHeight        = "logo-height"
	PropMajorSpacing      = "major-spacing"
	PropMinorSpacing      = "minor-spacing"
)

// Fixed geometry, as fractions of the page.
const (
	leftColumn     = 0.175
	rightColumn    = 0.825
	signatureWidth = 0.15
	signatureThick = 0.003
	nameBoxPadX    = 0.03
	nameBoxRadius  = 0.025
	logoBottom     = 0.05
)

// Renderer draws certificates.
type Renderer struct {
	render.Base
}

// New creates a certificate renderer with default properties.
func New(env render.Env) render.Renderer {
	return &Renderer{Base: render.NewBase(Name, "Mercury participation certificate", env, schema()...)}
}

func schema() []render.Property {
	str := func(key, def, desc string) render.Property {
		return render.Property{Key: key, Kind: render.String, Default: def, Description: desc}
	}
	frac := func(key, def, desc string) render.Property {
		return render.Property{Key: key, Kind: render.Float, Default: def, Description: desc}
	}
	return []render.Property{
		render.FontProperty(fonts.DefaultName),
		str(PropCertification, "This is to certify that the robot", "Certification preamble"),
		str(PropParticipation, "participated in the", "Participation preamble"),
		str(PropAdvisorName, "Dr. Carl D. Latino", "Name of the competition advisor"),
		str(PropAdvisorTitle, "Creator / Director", "Title of the competition advisor"),
		str(PropPresidentName, "Mr. Club President", "Name of the club president"),
		str(PropPresidentTitle, "Mercury Robotics President", "Title of the club president"),
		str(PropCompetitionTitle, "8th Annual Mercury Remote Robot Challenge", "Competition title"),
		str(PropHostTitle, "Hosted by the Electrical and Computer Engineering Department", "Certificate sub-heading"),
		str(PropHostInstitution, "Oklahoma State University", "Host institution"),
		str(PropDateAndLocation, "Month ##, 20## - Stillwater, Oklahoma", "Competition date and location"),
		str(PropPathToLogo, "", "Path to the logo image"),
		str(PropPathToBackground, "", "Path to the page background image"),
		frac(PropBackgroundHeight, "0.750", "Background height as a fraction of the page height"),
		str(PropTextBackground, "ff7300", "Name box color (hex)"),
		frac(PropPaddingTop, "0.070", "Top padding as a fraction of the page height"),
		frac(PropMainTextHeight, "0.040", "Main text height as a fraction of the page height"),
		frac(PropNameTextHeight, "0.100", "Team name height as a fraction of the page height"),
		frac(PropInstitutionHeight, "0.060", "Institution height as a fraction of the page height"),
		frac(PropTitleHeight, "0.060", "Competition title height as a fraction of the page height"),
		frac(PropDateTextHeight, "0.035", "Date line height as a fraction of the page height"),
		frac(PropStaffNameHeight, "0.035", "Staff name height as a fraction of the page height"),
		frac(PropStaffTitleHeight, "0.025", "Staff title height as a fraction of the page height"),
		frac(PropSignaturesPos, "0.840", "Signature line position from the top as a fraction of the page height"),
		frac(PropLogoHeight, "0.250", "Logo height as a fraction of the page height"),
		frac(PropMajorSpacing, "0.039", "Spacing between groups as a fraction of the page height"),
		frac(PropMinorSpacing, "0.010", "Spacing within a group as a fraction of the page height"),
		render.FontSizeProperty(),
	}
}

// SetProperty rejects text-background values that are not hex colors.
func (r *Renderer) SetProperty(key, value string) error {
	if key == PropTextBackground {
		if _, err := raster.ParseColor(value); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "property %s", key)
		}
	}
	return r.Base.SetProperty(key, value)
}

// Participation returns the participation sentence for b, honoring the
// per-badge override.
func (r *Renderer) Participation(b *badge.Badge) string {
	if v, ok := b.ExtraValue(ParticipationOverride); ok {
		return v
	}
	return r.Props.String(PropParticipation)
}

// ResourceHash implements render.ResourceHasher over the background and
// logo files.
func (r *Renderer) ResourceHash(ctx context.Context, _ *badge.Badge) string {
	return r.Env.ImageDigest(ctx, r.Props.String(PropPathToBackground)) + "," +
		r.Env.ImageDigest(ctx, r.Props.String(PropPathToLogo))
}

// Render implements render.Renderer.
func (r *Renderer) Render(ctx context.Context, b *badge.Badge) image.Image {
	w, h := b.PixelSize()
	W, H := float64(w), float64(h)
	p := r.Props

	dc := raster.NewCanvas(w, h, b.BackgroundColor)

	if bg := r.Env.Image(ctx, p.String(PropPathToBackground)); bg != nil {
		bh := int(p.Float(PropBackgroundHeight) * H)
		iw, ih := raster.Size(bg)
		bw := raster.AspectWidth(iw, ih, bh)
		raster.Blit(dc, raster.Scale(bg, bw, bh, r.Env.Quality), (w-bw)/2, (h-bh)/2)
	}
	if logo := r.Env.Image(ctx, p.String(PropPathToLogo)); logo != nil {
		lh := int(p.Float(PropLogoHeight) * H)
		iw, ih := raster.Size(logo)
		lw := raster.AspectWidth(iw, ih, lh)
		raster.Blit(dc, raster.Scale(logo, lw, lh, r.Env.Quality), (w-lw)/2, int((1-logoBottom-p.Float(PropLogoHeight))*H))
	}

	plain := r.Font(fonts.Regular)
	bold := r.Font(fonts.Bold)
	black := color.Black
	px := func(key string) int { return int(p.Float(key) * H) }
	major := p.Float(PropMajorSpacing) * H
	minor := p.Float(PropMinorSpacing) * H

	c := cursor{dc: dc, width: w, y: int(p.Float(PropPaddingTop) * H)}

	c.centered(r.Text(plain, p.String(PropCertification), black, px(PropMainTextHeight), 0))
	c.advance(px(PropMainTextHeight), major)

	nameH := px(PropNameTextHeight)
	name := r.Text(bold, b.Primary, b.TextColor, nameH, 0)
	if nw, _ := raster.Size(name); nw > 0 {
		x := float64((w - nw) / 2)
		dc.SetColor(raster.ColorOrBlack(p.String(PropTextBackground)))
		dc.DrawRoundedRectangle(x-nameBoxPadX*W, float64(c.y), float64(nw)+2*nameBoxPadX*W, float64(nameH), nameBoxRadius*H)
		dc.Fill()
	}
	c.centered(name)
	c.advance(nameH, minor)

	c.centered(r.Text(bold, b.Secondary, black, px(PropInstitutionHeight), 0))
	c.advance(px(PropInstitutionHeight), major)

	c.centered(r.Text(plain, r.Participation(b), black, px(PropMainTextHeight), 0))
	c.advance(px(PropMainTextHeight), major)

	c.centered(r.Text(bold, p.String(PropCompetitionTitle), black, px(PropTitleHeight), 0))
	c.advance(px(PropTitleHeight), major)

	c.centered(r.Text(plain, p.String(PropHostTitle), black, px(PropMainTextHeight), 0))
	c.advance(px(PropMainTextHeight), minor)

	c.centered(r.Text(plain, p.String(PropHostInstitution), black, px(PropMainTextHeight), 0))
	c.advance(px(PropMainTextHeight), minor)

	c.centered(r.Text(plain, p.String(PropDateAndLocation), black, px(PropDateTextHeight), 0))

	// Signatures: two rules, names below, titles below the names.
	ruleY := int(p.Float(PropSignaturesPos) * H)
	ruleW := int(signatureWidth * W)
	ruleH := int(signatureThick * H)
	dc.SetColor(black)
	for _, col := range []float64{leftColumn, rightColumn} {
		dc.DrawRectangle(float64(int(col*W)-ruleW/2), float64(ruleY), float64(ruleW), float64(ruleH))
	}
	dc.Fill()

	y := ruleY + int(float64(ruleH)+2*minor)
	staffNameH := px(PropStaffNameHeight)
	column(dc, r.Text(bold, p.String(PropAdvisorName), black, staffNameH, 0), leftColumn*W, y)
	column(dc, r.Text(bold, p.String(PropPresidentName), black, staffNameH, 0), rightColumn*W, y)

	y += int(float64(staffNameH) + minor)
	staffTitleH := px(PropStaffTitleHeight)
	column(dc, r.Text(plain, p.String(PropAdvisorTitle), black, staffTitleH, 0), leftColumn*W, y)
	column(dc, r.Text(plain, p.String(PropPresidentTitle), black, staffTitleH, 0), rightColumn*W, y)

	return dc.Image()
}

// cursor tracks the running vertical position of the centered column.
type cursor struct {
	dc    *gg.Context
	width int
	y     int
}

func (c *cursor) centered(img image.Image) {
	iw, _ := raster.Size(img)
	raster.Blit(c.dc, img, (c.width-iw)/2, c.y)
}

// advance moves past a block of height h plus spacing.
func (c *cursor) advance(h int, spacing float64) {
	c.y += int(float64(h) + spacing)
}

// column centers img on the vertical line x.
func column(dc *gg.Context, img image.Image, x float64, y int) {
	iw, _ := raster.Size(img)
	raster.Blit(dc, img, int(x)-iw/2, y)
}
