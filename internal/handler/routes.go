package handler

import "github.com/maxviazov/tracker-dashboard/internal/model"

// Route prefixes of the backend contract. Keep a single source of truth to
// avoid path drift across handlers, the client and tests.
const (
	APIPrefix            = "/api"
	TrackingPrefix       = "/tracking"
	DashboardPrefix      = "/dashboard"
	UserManagementPrefix = "/user-management"
	LoginPath            = model.LoginPath
	LogoutPath           = model.LogoutPath
)
