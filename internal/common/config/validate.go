// internal/common/config/validate.go
package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the sections every deployment needs.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Camunda),
		validation.Field(&c.Database),
		validation.Field(&c.Safety),
		validation.Field(&c.Quota),
		validation.Field(&c.HTTP),
	)
}

func (c CamundaConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BrokerAddress, validation.Required),
	)
}

func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Postgres),
		validation.Field(&d.Redis),
	)
}

func (p PostgresConfig) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Host, validation.Required),
		validation.Field(&p.Database, validation.Required),
		validation.Field(&p.User, validation.Required),
		validation.Field(&p.Port, validation.Min(1), validation.Max(65535)),
	)
}

func (r RedisConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Address, validation.Required),
	)
}

func (s SafetyConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.CacheBackend, validation.Required,
			validation.In(CacheBackendRedis, CacheBackendPostgres, CacheBackendElasticsearch)),
		validation.Field(&s.FreshnessHours, validation.Min(1)),
		validation.Field(&s.MinCachedItems, validation.Min(1)),
		validation.Field(&s.ShortQueryLength, validation.Min(0)),
	)
}

func (q QuotaConfig) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.DailyScrapeLimit, validation.Min(1)),
		validation.Field(&q.LedgerBackend, validation.Required,
			validation.In(LedgerBackendRedis, LedgerBackendPostgres)),
		validation.Field(&q.CreditTimeout, validation.Min(1)),
	)
}

func (h HTTPConfig) Validate() error {
	return validation.ValidateStruct(&h,
		validation.Field(&h.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}
