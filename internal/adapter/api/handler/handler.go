package handler

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	User   *UserHandler
	Health *HealthHandler
}
