// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package config

import (
	"fmt"

	"github.com/tomtom215/declaspectacle/internal/validation"
)

// Validate checks struct tags, then the rules tags cannot express.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Connections))
	for i := range c.Connections {
		conn := &c.Connections[i]
		if seen[conn.Name] {
			return fmt.Errorf("connection %q is defined more than once", conn.Name)
		}
		seen[conn.Name] = true

		if err := conn.validateCredentials(); err != nil {
			return fmt.Errorf("connection %q: %w", conn.Name, err)
		}
	}

	if c.Sibil.Username != "" && c.Sibil.ResolvedPassword() == "" {
		return fmt.Errorf("sibil.password (or sibil.password_env) is required when sibil.username is set")
	}
	return nil
}

// validateCredentials checks that the credential fields the vendor needs are set.
func (c *ConnectionConfig) validateCredentials() error {
	if c.AccessKey == "" && c.AccessKeyEnv == "" {
		return fmt.Errorf("access_key or access_key_env is required for %s", c.Vendor)
	}
	if c.Vendor != "dice" && c.SecretKey == "" && c.SecretKeyEnv == "" {
		return fmt.Errorf("secret_key or secret_key_env is required for %s", c.Vendor)
	}
	switch c.Vendor {
	case "helloasso", "weezevent":
		if c.AccountID == "" {
			return fmt.Errorf("account_id is required for %s", c.Vendor)
		}
	}
	return nil
}
