// Package config provides configuration parsing for loopline projects.
//
// The configuration is stored in loopline.json at the project root:
//
//	{
//	  "name": "my-todos",
//	  "baseUrl": "https://api.example.com/api/v1",
//	  "storage": {"driver": "sqlite", "path": ".loopline/credentials.db"},
//	  "paths": {"login": "/login", "home": "/dashboard"},
//	  "cookie": {"maxAge": 3600},
//	  "dev": {"port": 8000, "host": "localhost"}
//	}
//
// A .env file next to loopline.json, and LOOPLINE_* environment variables,
// override the file values. Environment variables win over .env entries.
package config
