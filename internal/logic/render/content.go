// Package render composes HTML previews of ad content. The markup is for
// inspection tools; it is not how a device draws the ad.
package render

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/patrickwarner/adsdk/internal/models"
)

var cssColor = regexp.MustCompile(`^(#[0-9A-Fa-f]{3,8}|[A-Za-z]{3,20})$`)

// ComposeContentHTML converts content into HTML markup. Raw HTML content is
// placed in a sandboxed iframe so that it is displayed, never executed. A nil
// content yields "".
func ComposeContentHTML(c models.ContentVariant) string {
	return models.Match(c, composeText, composeImage, composeHTML)
}

func composeText(t models.TextContent) string {
	var style []string
	if cssColor.MatchString(t.BackgroundColor) {
		style = append(style, "background-color:"+t.BackgroundColor)
	}
	if cssColor.MatchString(t.TextColor) {
		style = append(style, "color:"+t.TextColor)
	}
	style = append(style, "padding:8px", "font-family:sans-serif")

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="ad ad-text" style="%s">`, strings.Join(style, ";"))
	if t.AppName != "" || t.AppIcon != "" {
		b.WriteString(`<div class="ad-app">`)
		if t.AppIcon != "" {
			fmt.Fprintf(&b, `<span class="ad-icon" data-icon="%s"></span>`, html.EscapeString(t.AppIcon))
		}
		if t.AppName != "" {
			fmt.Fprintf(&b, `<strong>%s</strong>`, html.EscapeString(t.AppName))
		}
		b.WriteString(`</div>`)
	}
	fmt.Fprintf(&b, `<p>%s</p>`, html.EscapeString(t.Text))
	if t.Rating != nil {
		fmt.Fprintf(&b, `<span class="ad-rating">&#9733; %s</span>`, strconv.FormatFloat(*t.Rating, 'f', 1, 64))
	}
	if t.Price != "" {
		fmt.Fprintf(&b, `<span class="ad-price">%s</span>`, html.EscapeString(t.Price))
	}
	if t.CTAText != "" {
		if href := safeURL(t.AppURL); href != "" {
			fmt.Fprintf(&b, `<a class="ad-cta" href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(t.CTAText))
		} else {
			fmt.Fprintf(&b, `<span class="ad-cta">%s</span>`, html.EscapeString(t.CTAText))
		}
	}
	b.WriteString(`</div>`)
	return b.String()
}

func composeImage(i models.ImageContent) string {
	img := fmt.Sprintf(`<img src="%s" alt="Advertisement" style="max-width:100%%;max-height:100%%;width:auto;height:auto;display:block;">`,
		html.EscapeString(i.ImageURL))
	if href := safeURL(i.ClickURL); href != "" {
		return fmt.Sprintf(`<a class="ad ad-image" href="%s">%s</a>`, html.EscapeString(href), img)
	}
	return `<div class="ad ad-image">` + img + `</div>`
}

func composeHTML(h models.HTMLContent) string {
	return fmt.Sprintf(`<iframe class="ad ad-html" sandbox="" srcdoc="%s"></iframe>`, html.EscapeString(h.HTML))
}

// safeURL returns u when it is an absolute http or https URL, else "".
func safeURL(u string) string {
	parsed, err := url.Parse(u)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return ""
	}
	return u
}
