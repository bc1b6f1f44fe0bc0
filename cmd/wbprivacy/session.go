package main

import (
	"fmt"

	"wbprivacy/pkg/auth"
	"wbprivacy/pkg/config"
	"wbprivacy/pkg/logger"
	"wbprivacy/pkg/ui"
	"wbprivacy/pkg/weibo"
)

// resolveCookie finds the session cookie for a run, in priority order:
// explicit --cookie, --cookie-file, configuration/environment, a named
// stored account, then the default stored account.
func resolveCookie(cfg *config.Config, accountName string) (string, error) {
	if cfg.Weibo.Cookie != "" {
		return cfg.Weibo.Cookie, nil
	}

	if cfg.Weibo.CookieFile != "" {
		cookie, err := auth.LoadCookieFromFile(cfg.Weibo.CookieFile)
		if err != nil {
			return "", err
		}
		return cookie, nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return "", fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if accountName != "" {
		account, err := manager.Retrieve(accountName)
		if err != nil {
			return "", fmt.Errorf("account %q not found; use 'wbprivacy auth list' to see stored accounts", accountName)
		}
		ui.PrintInfo("Using account", account.Name)
		if account.UserAgent != "" {
			cfg.Weibo.UserAgent = account.UserAgent
		}
		return account.Cookie, nil
	}

	account, err := manager.RetrieveDefault()
	if err != nil {
		return "", fmt.Errorf("no Weibo session found; run 'wbprivacy auth login', set WBPRIVACY_COOKIE, or pass --cookie")
	}
	ui.PrintInfo("Using account", account.Name)
	if account.UserAgent != "" {
		cfg.Weibo.UserAgent = account.UserAgent
	}
	return account.Cookie, nil
}

// newClient resolves the session and constructs the API client
func newClient(cfg *config.Config, accountName string) (*weibo.Client, error) {
	cookie, err := resolveCookie(cfg, accountName)
	if err != nil {
		return nil, err
	}

	client, err := weibo.NewClientWithConfig(cookie, cfg, logger.GetLogger())
	if err != nil {
		return nil, err
	}
	return client, nil
}
