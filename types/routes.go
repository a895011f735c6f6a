package types

// Application routes. The guard package decides who may visit what.
const (
	RouteEntry          = "/"
	RouteHome           = "/home"
	RouteSuccess        = "/success"
	RouteFailed         = "/failed"
	RouteAdmin          = "/admin"
	RouteAdminDashboard = "/admin/dashboard"
)
