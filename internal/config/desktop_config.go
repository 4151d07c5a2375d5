package config

// setDesktopDefaults adds the defaults for desktop mirroring to defs.
func setDesktopDefaults(defs map[string]string) {
	defs["desktop_dedup_criteria"] = "content"
	defs["desktop_dedup_window"] = "10s"
	defs["desktop_rate_per_minute"] = "20"
	defs["desktop_timeout"] = "5s"
}

func registerDesktopValidators() {
	RegisterValidator("desktop_dedup_criteria", EnumValidator(map[string]bool{
		"title":   true,
		"content": true,
		"exact":   true,
	}))
	RegisterValidator("desktop_dedup_window", DurationValidator(true))
	RegisterValidator("desktop_rate_per_minute", NonNegativeIntValidator())
	RegisterValidator("desktop_timeout", DurationValidator(false))
}
