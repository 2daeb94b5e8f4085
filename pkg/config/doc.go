// Package config loads strongly-typed configuration structs from environment
// variables using struct tags.
//
// Each configuration type is parsed at most once per process; subsequent Load
// calls for the same type return the cached value. A .env file in the working
// directory is loaded automatically before the first parse, which keeps local
// development setups simple without affecting deployed environments.
//
// Example:
//
//	type RedisConfig struct {
//		URL string `env:"REDIS_URL,required"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
//
// Use MustLoad for configuration the process cannot start without.
package config
