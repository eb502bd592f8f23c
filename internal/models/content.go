package models

// Format names the kind of content a pattern carries. It is the value of the
// "format" field in the pattern configuration document.
type Format string

const (
	FormatText  Format = "text"
	FormatImage Format = "image"
	FormatHTML  Format = "html"
)

// Valid reports whether f is one of the known content formats.
func (f Format) Valid() bool {
	switch f {
	case FormatText, FormatImage, FormatHTML:
		return true
	}
	return false
}

// ContentVariant is the payload an ad surface displays. It is a closed set:
// TextContent, ImageContent and HTMLContent are the only implementations, and
// callers inspect a value with Match rather than type assertions.
type ContentVariant interface {
	// Format returns the format tag matching the concrete variant.
	Format() Format
	isContent()
}

// Storefront holds the optional app-store style metadata shown alongside a
// text ad. Any field may be empty.
type Storefront struct {
	AppName string   `json:"appName,omitempty"`
	AppIcon string   `json:"appIcon,omitempty"` // icon reference, resolved by the renderer
	Rating  *float64 `json:"rating,omitempty"`
	Price   string   `json:"price,omitempty"`
	CTAText string   `json:"ctaText,omitempty"` // call-to-action label
	AppURL  string   `json:"appUrl,omitempty"`  // destination opened on tap
}

// TextContent is a text ad with foreground and background colors.
type TextContent struct {
	Text            string `json:"text"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	Storefront
}

// ImageContent is an image ad with a destination URL.
type ImageContent struct {
	ImageURL string `json:"imageUrl"`
	ClickURL string `json:"clickUrl"`
}

// HTMLContent carries a raw markup blob. The SDK never executes it.
type HTMLContent struct {
	HTML string `json:"html"`
}

func (TextContent) Format() Format  { return FormatText }
func (ImageContent) Format() Format { return FormatImage }
func (HTMLContent) Format() Format  { return FormatHTML }

func (TextContent) isContent()  {}
func (ImageContent) isContent() {}
func (HTMLContent) isContent()  {}

// Match dispatches on the concrete variant of c and returns the result of the
// matching function. Every call site supplies all three cases. A nil c yields
// the zero value of T.
func Match[T any](c ContentVariant, text func(TextContent) T, image func(ImageContent) T, html func(HTMLContent) T) T {
	switch v := c.(type) {
	case TextContent:
		return text(v)
	case ImageContent:
		return image(v)
	case HTMLContent:
		return html(v)
	}
	var zero T
	return zero
}

// Destination returns the URL a tap on c should open, or "" when the content
// has none.
func Destination(c ContentVariant) string {
	return Match(c,
		func(t TextContent) string { return t.AppURL },
		func(i ImageContent) string { return i.ClickURL },
		func(HTMLContent) string { return "" },
	)
}
