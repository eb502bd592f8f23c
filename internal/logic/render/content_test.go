package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patrickwarner/adsdk/internal/models"
)

func TestComposeContentHTML_Text(t *testing.T) {
	rating := 4.5
	out := ComposeContentHTML(models.TextContent{
		Text:            "Your account <b>needs</b> attention",
		BackgroundColor: "#FFFFFF",
		TextColor:       "red",
		Storefront: models.Storefront{
			AppName: "Mail",
			Rating:  &rating,
			Price:   "Free",
			CTAText: "VERIFY",
			AppURL:  "https://example.com/verify",
		},
	})

	assert.Contains(t, out, `background-color:#FFFFFF`)
	assert.Contains(t, out, `color:red`)
	assert.Contains(t, out, `Your account &lt;b&gt;needs&lt;/b&gt; attention`)
	assert.Contains(t, out, `<strong>Mail</strong>`)
	assert.Contains(t, out, `&#9733; 4.5`)
	assert.Contains(t, out, `<span class="ad-price">Free</span>`)
	assert.Contains(t, out, `<a class="ad-cta" href="https://example.com/verify">VERIFY</a>`)
}

func TestComposeContentHTML_TextRejectsUnsafeValues(t *testing.T) {
	out := ComposeContentHTML(models.TextContent{
		Text:            "hi",
		BackgroundColor: "red;background-image:url(x)",
		TextColor:       "#000",
		Storefront:      models.Storefront{CTAText: "GO", AppURL: "javascript:alert(1)"},
	})
	assert.NotContains(t, out, "background-image")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, `<span class="ad-cta">GO</span>`)
}

func TestComposeContentHTML_Image(t *testing.T) {
	out := ComposeContentHTML(models.ImageContent{
		ImageURL: "https://cdn.example.com/a.png",
		ClickURL: "https://example.com/land?a=1&b=2",
	})
	assert.True(t, strings.HasPrefix(out, `<a class="ad ad-image" href="https://example.com/land?a=1&amp;b=2">`))
	assert.Contains(t, out, `src="https://cdn.example.com/a.png"`)

	out = ComposeContentHTML(models.ImageContent{ImageURL: "a.png"})
	assert.True(t, strings.HasPrefix(out, `<div class="ad ad-image">`))
}

func TestComposeContentHTML_HTMLIsSandboxed(t *testing.T) {
	out := ComposeContentHTML(models.HTMLContent{HTML: `<script>alert("x")</script>`})
	assert.Contains(t, out, `sandbox=""`)
	assert.Contains(t, out, `srcdoc="&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;"`)
	assert.NotContains(t, out, "<script>")
}

func TestComposeContentHTML_Nil(t *testing.T) {
	assert.Equal(t, "", ComposeContentHTML(nil))
}
