// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package config loads the application configuration with Koanf v2.

Sources, lowest to highest priority:

 1. Built-in defaults (defaultConfig)
 2. YAML file: $CONFIG_PATH, else config.yaml / config.yml in the working
    directory, else /etc/declaspectacle/config.yaml
 3. Environment variables listed in envTransformFunc (LOG_LEVEL,
    TICKETING_TIMEOUT, SIBIL_PASSWORD, ...)

Ticketing connections are only read from the file because they are a list:

	connections:
	  - name: theatre
	    vendor: billetweb
	    access_key: "12345"
	    secret_key_env: BILLETWEB_THEATRE_KEY
	  - name: festival
	    vendor: helloasso
	    access_key: my-client-id
	    secret_key_env: HELLOASSO_SECRET
	    account_id: festival-des-arts
	    sandbox: true

A *_env field names an environment variable holding the value, so that
secrets stay out of the file. The loaded configuration is validated with
go-playground/validator before being returned.
*/
package config
