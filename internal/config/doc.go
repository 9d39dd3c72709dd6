// Package config resolves the gateway's runtime configuration once at
// startup from environment variables and an optional JSONC provider/MCP
// declaration file.
//
// # Environment variables
//
// The known keys are:
//
//	WEB_APP_URL                - canonical browser origin, used by the CSRF/origin guard
//	ADDITIONAL_ALLOWED_ORIGINS - comma-separated extra allowed origins
//	ORIGIN_VALIDATION_MODE     - "warn" or "block" (default "block")
//	COOKIE_DOMAIN              - optional Domain= attribute for the session cookie
//	CRON_SECRET                - loaded into AppConfig.CronSecret; no route checks it
//	AUTH_SECRET                - HMAC key for session/MCP token hashing and CSRF binding
//	PROCESSOR_URL              - base URL of the external file processor
//	FILE_STORAGE_PATH          - root directory the attachment store reads content-addressed file bytes from
//	DATABASE_URL               - postgres connection string
//	PAGESPACE_DEFAULT_KEY      - "glm" or "google", selects the platform default key for the "pagespace" provider
//
// Provider API keys are read as PAGESPACE_PROVIDER_<NAME>_API_KEY /
// _BASE_URL, layered on top of the on-disk gateway.jsonc provider block.
package config
