package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type proxyCmd struct {
	enable  bool
	disable bool
	key     string
}

func (*proxyCmd) Name() string     { return "proxy" }
func (*proxyCmd) Synopsis() string { return "configure scraping through the rotating proxy" }
func (*proxyCmd) Usage() string {
	return `cst proxy [-key <api_key>] [-enable | -disable]

  Stores the proxy API key and toggles whether scrape runs are routed
  through the proxy endpoint. With the proxy enabled there is no
  inter-request throttling.
`
}

func (c *proxyCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.enable, "enable", false, "route scrape runs through the proxy")
	f.BoolVar(&c.disable, "disable", false, "scrape directly without the proxy")
	f.StringVar(&c.key, "key", "", "proxy API key to store")
}

func (c *proxyCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.enable && c.disable {
		fmt.Fprintln(os.Stderr, "-enable and -disable are mutually exclusive")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.key != "" {
		if err := cfg.SetProxyAPIKey(c.key); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	if c.enable || c.disable {
		if err := cfg.SetUseProxy(c.enable); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	state := "disabled"
	if cfg.Settings.UseProxy {
		state = "enabled"
	}
	fmt.Printf("proxy %s, api key set: %t\n", state, cfg.Settings.ProxyAPIKey != "")
	return subcommands.ExitSuccess
}

type discordCmd struct {
	enable  bool
	disable bool
	webhook string
}

func (*discordCmd) Name() string     { return "discord" }
func (*discordCmd) Synopsis() string { return "configure discord webhook notifications" }
func (*discordCmd) Usage() string {
	return `cst discord [-webhook <url>] [-enable | -disable]

  Stores the webhook URL and toggles whether each scrape run posts the
  recent history to it.
`
}

func (c *discordCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.enable, "enable", false, "post a notification after each scrape run")
	f.BoolVar(&c.disable, "disable", false, "do not post notifications")
	f.StringVar(&c.webhook, "webhook", "", "discord webhook URL to store")
}

func (c *discordCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.enable && c.disable {
		fmt.Fprintln(os.Stderr, "-enable and -disable are mutually exclusive")
		return subcommands.ExitUsageError
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.webhook != "" {
		if err := cfg.SetDiscordWebhookURL(c.webhook); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	if c.enable || c.disable {
		if err := cfg.SetDiscordNotifications(c.enable); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}

	state := "disabled"
	if cfg.Settings.DiscordNotifications {
		state = "enabled"
	}
	fmt.Printf("discord notifications %s, webhook set: %t\n", state, cfg.Settings.DiscordWebhookURL != "")
	return subcommands.ExitSuccess
}
