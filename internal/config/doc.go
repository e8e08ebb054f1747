// Package config loads, normalizes, and validates skiprice configuration data.
//
// It supplies repository defaults, resolves every pipeline directory against
// the project directory (expanding tilde shortcuts), reads TOML files, and
// honours environment fallbacks such as SKIPRICE_PROJECT_DIR. The Config type
// centralizes the stage directories, overwrite policy, model parameters, and
// scenario settings so the CLI and the pipeline runner discover them in one
// pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a canonical overwrite policy, and clear validation errors.
package config
