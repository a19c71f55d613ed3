/*
Package config loads process settings from .env files and the environment.

	UOW_METADATA_FILE     entity metadata YAML
	UOW_LOG_LEVEL         debug, info, warn, error (default info)
	UOW_SNAPSHOT_BACKEND  memory (default) or dynamodb
	AWS_ACCESS_KEY        static credentials for the dynamodb backend
	AWS_SECRET_KEY
	AWS_REGION            required for dynamodb
	AWS_DDB_TABLE         required for dynamodb
*/
package config
