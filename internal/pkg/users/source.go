package users

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mssola/useragent"

	"github.com/clawsite/clawsite/app/models"
)

// TrackingCookie holds the URL encoded JSON the landing page stores for attribution.
const TrackingCookie = "user_tracking_data"

type trackingData struct {
	AffCode     string `json:"affCode"`
	UTMSource   string `json:"utmSource"`
	UTMMedium   string `json:"utmMedium"`
	UTMCampaign string `json:"utmCampaign"`
	UTMTerm     string `json:"utmTerm"`
	UTMContent  string `json:"utmContent"`
	Referrer    string `json:"referrer"`
	Language    string `json:"language"`
}

// SourceFromRequest builds the signup attribution row from the tracking
// cookie, the user agent and the Cloudflare country header.
func SourceFromRequest(c *fiber.Ctx) *models.UserSource {
	var td trackingData
	if raw := c.Cookies(TrackingCookie); raw != "" {
		if decoded, err := url.QueryUnescape(raw); err == nil {
			_ = json.Unmarshal([]byte(decoded), &td)
		}
	}

	src := &models.UserSource{
		AffCode:     clip(td.AffCode, 100),
		UTMSource:   clip(td.UTMSource, 255),
		UTMMedium:   clip(td.UTMMedium, 255),
		UTMCampaign: clip(td.UTMCampaign, 255),
		UTMTerm:     clip(td.UTMTerm, 255),
		UTMContent:  clip(td.UTMContent, 255),
		Referrer:    td.Referrer,
		CountryCode: clip(strings.ToUpper(c.Get("CF-IPCountry")), 10),
		Language:    clip(td.Language, 20),
	}
	if src.Referrer == "" {
		src.Referrer = c.Get(fiber.HeaderReferer)
	}
	if src.Language == "" {
		src.Language = clip(firstLanguage(c.Get(fiber.HeaderAcceptLanguage)), 20)
	}
	applyUserAgent(src, c.Get(fiber.HeaderUserAgent))
	return src
}

func applyUserAgent(src *models.UserSource, raw string) {
	if raw == "" {
		return
	}
	ua := useragent.New(raw)
	name, _ := ua.Browser()
	src.Browser = clip(name, 100)
	src.OS = clip(ua.OSInfo().Name, 100)
	src.DeviceModel = clip(ua.Model(), 100)

	switch {
	case ua.Bot():
		src.DeviceType = "bot"
	case strings.Contains(strings.ToLower(raw), "ipad"), strings.Contains(strings.ToLower(raw), "tablet"):
		src.DeviceType = "tablet"
	case ua.Mobile():
		src.DeviceType = "mobile"
	default:
		src.DeviceType = "desktop"
	}

	switch platform := strings.ToLower(ua.Platform()); {
	case strings.Contains(platform, "iphone"), strings.Contains(platform, "ipad"), strings.Contains(platform, "macintosh"):
		src.DeviceBrand = "Apple"
	case strings.Contains(strings.ToLower(raw), "samsung"), strings.Contains(strings.ToLower(raw), "sm-"):
		src.DeviceBrand = "Samsung"
	}
}

func firstLanguage(header string) string {
	first := strings.TrimSpace(strings.SplitN(header, ",", 2)[0])
	return strings.TrimSpace(strings.SplitN(first, ";", 2)[0])
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		return s[:n]
	}
	return s
}
