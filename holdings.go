package tracker

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// The holdings file is an INI file using '~' as the key/value delimiter,
// because the option keys are Steam market listing URLs and those may
// contain '=' and ':'.
const configDelimiter = "~"

// Reserved section names that hold settings rather than holdings.
const (
	sectionUserSettings = "User Settings"
	sectionAppSettings  = "App Settings"
)

var listingURL = regexp.MustCompile(`^https://steamcommunity\.com/market/listings/\d+/.+$`)

// capsulePages maps a capsule section name to the market search page that
// lists every capsule of that event. Items of such a section share one page
// so a run fetches it once and serves the rest from the client cache.
var capsulePages = map[string]string{
	"Stockholm 2021":  "https://steamcommunity.com/market/search?q=Stockholm+2021+Sticker+Capsule",
	"Antwerp 2022":    "https://steamcommunity.com/market/search?q=Antwerp+2022+Sticker+Capsule",
	"Rio 2022":        "https://steamcommunity.com/market/search?q=Rio+2022+Sticker+Capsule",
	"Paris 2023":      "https://steamcommunity.com/market/search?q=Paris+2023+Sticker+Capsule",
	"Copenhagen 2024": "https://steamcommunity.com/market/search?q=Copenhagen+2024+Sticker+Capsule",
	"Shanghai 2024":   "https://steamcommunity.com/market/search?q=Shanghai+2024+Sticker+Capsule",
}

// Item is one holdings entry: a stable listing key and the owned count.
type Item struct {
	Href       string // Steam market listing URL, the opaque item identifier
	Owned      int
	SharedPage string // non-empty when the item's section shares one search page
}

// Name returns the URL-decoded display name of the item, i.e. the last
// path segment of its listing URL.
func (it Item) Name() string {
	raw := it.Href[strings.LastIndex(it.Href, "/")+1:]
	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return name
}

// EncodedName returns the still URL-encoded last path segment of the listing.
func (it Item) EncodedName() string {
	return it.Href[strings.LastIndex(it.Href, "/")+1:]
}

// Section is a named group of holdings entries in stored order.
type Section struct {
	Name  string
	Page  string // shared search page, empty unless the section is a capsule event
	Items []Item
}

// Settings are the non-holdings options of the configuration file.
type Settings struct {
	ProxyAPIKey          string
	UseProxy             bool
	DiscordWebhookURL    string
	DiscordNotifications bool
	Currency             string // display currency for converted totals
	Parser               string // active source parser variant
}

// Config is the validated holdings/settings model. It is an explicit value
// handed to the orchestrator; there is no global configuration state.
type Config struct {
	Path     string
	Sections []Section
	Settings Settings

	file *ini.File
	err  error
}

// LoadConfig reads and validates the configuration file. I/O and INI syntax
// problems are returned as errors; semantic problems (bad listing URL,
// negative count, unknown currency) are retained and reported by Validate,
// so callers can still inspect the rest of the model.
func LoadConfig(path string) (*Config, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:       configDelimiter,
		KeyValueDelimiterOnWrite: configDelimiter,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("cannot load config %q: %w", path, err)
	}

	cfg := &Config{Path: path, file: file}
	cfg.Settings = readSettings(file)

	for _, sec := range file.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection || name == sectionUserSettings || name == sectionAppSettings {
			continue
		}
		section := Section{Name: name, Page: capsulePages[name]}
		for _, key := range sec.Keys() {
			owned, convErr := strconv.Atoi(strings.TrimSpace(key.Value()))
			if convErr != nil {
				owned = -1 // flagged below
			}
			section.Items = append(section.Items, Item{
				Href:       key.Name(),
				Owned:      owned,
				SharedPage: section.Page,
			})
		}
		cfg.Sections = append(cfg.Sections, section)
	}

	cfg.err = cfg.check()
	return cfg, nil
}

func readSettings(file *ini.File) Settings {
	user := file.Section(sectionUserSettings)
	app := file.Section(sectionAppSettings)
	s := Settings{
		ProxyAPIKey:          user.Key("proxy_api_key").String(),
		DiscordWebhookURL:    user.Key("discord_webhook_url").String(),
		Currency:             user.Key("conversion_currency").MustString(ReferenceCurrency),
		UseProxy:             app.Key("use_proxy").MustBool(false),
		DiscordNotifications: app.Key("discord_notifications").MustBool(false),
		Parser:               app.Key("parser").MustString("csgotrader"),
	}
	return s
}

// check runs the semantic validation and returns the first problem found.
func (c *Config) check() error {
	if !c.file.HasSection(sectionUserSettings) {
		return fmt.Errorf("missing %q section", sectionUserSettings)
	}
	if !c.file.HasSection(sectionAppSettings) {
		return fmt.Errorf("missing %q section", sectionAppSettings)
	}
	if !KnownCurrency(c.Settings.Currency) {
		return fmt.Errorf("unknown conversion currency %q", c.Settings.Currency)
	}
	for _, section := range c.Sections {
		for _, item := range section.Items {
			if !listingURL.MatchString(item.Href) {
				return fmt.Errorf("section %q: %q is not a Steam market listing URL", section.Name, item.Href)
			}
			if item.Owned < 0 {
				return fmt.Errorf("section %q: owned count for %q must be a non-negative integer", section.Name, item.Name())
			}
		}
	}
	return nil
}

// Validate reports the semantic validation result established at load time.
func (c *Config) Validate() error { return c.err }

// Valid reports whether the configuration passed validation.
func (c *Config) Valid() bool { return c.err == nil }

// SetUseProxy toggles proxy usage and persists the configuration.
func (c *Config) SetUseProxy(enabled bool) error {
	c.Settings.UseProxy = enabled
	c.file.Section(sectionAppSettings).Key("use_proxy").SetValue(strconv.FormatBool(enabled))
	return c.save()
}

// SetProxyAPIKey stores the proxy credential and persists the configuration.
func (c *Config) SetProxyAPIKey(key string) error {
	c.Settings.ProxyAPIKey = key
	c.file.Section(sectionUserSettings).Key("proxy_api_key").SetValue(key)
	return c.save()
}

// SetDiscordNotifications toggles webhook notifications and persists the
// configuration.
func (c *Config) SetDiscordNotifications(enabled bool) error {
	c.Settings.DiscordNotifications = enabled
	c.file.Section(sectionAppSettings).Key("discord_notifications").SetValue(strconv.FormatBool(enabled))
	return c.save()
}

// SetDiscordWebhookURL stores the webhook URL and persists the configuration.
func (c *Config) SetDiscordWebhookURL(url string) error {
	c.Settings.DiscordWebhookURL = url
	c.file.Section(sectionUserSettings).Key("discord_webhook_url").SetValue(url)
	return c.save()
}

func (c *Config) save() error {
	if err := c.check(); err != nil {
		return fmt.Errorf("refusing to write invalid config: %w", err)
	}
	return c.file.SaveTo(c.Path)
}
