// Package config provides configuration loading for the hospital pipeline.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. hospital.yaml or configs/hospital.yaml
//  3. Default values from struct tags (lowest priority)
//
// # Environment Variables
//
// All environment variables use the HOSPITAL_ prefix:
//
//	HOSPITAL_LOGGING_LEVEL=debug
//	HOSPITAL_SOURCES_DATA_DIR=/srv/hospital/data
//	HOSPITAL_OUTPUT_REPORTS_DIR=/srv/hospital/reports
//	HOSPITAL_SERVER_PORT=8080
//
// The unit names, column mappings and fill rules are fixed in code and are not
// configurable.
package config
