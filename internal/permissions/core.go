package permissions

// Resource identifiers of the administration menus.
const (
	ResourceDashboard     = "dashboard"
	ResourceVehicles      = "vehicles"
	ResourceEmployees     = "employees"
	ResourceServices      = "services"
	ResourceCertificates  = "certificates"
	ResourceLicenses      = "licenses"
	ResourceUsers         = "users"
	ResourcePermissions   = "permissions"
	ResourceNotifications = "notifications"
)

func init() {
	resources := []*Resource{
		{
			ID:          ResourceDashboard,
			Name:        "Dashboard",
			Path:        "/dashboard",
			Icon:        "gauge",
			Description: "Fleet overview",
			SortOrder:   0,
		},
		{
			ID:          ResourceVehicles,
			Name:        "Vehicles",
			Path:        "/vehicles",
			Icon:        "truck",
			Description: "Manage fleet vehicles",
			SortOrder:   10,
		},
		{
			ID:          ResourceEmployees,
			Name:        "Employees",
			Path:        "/employees",
			Icon:        "users",
			Description: "Manage drivers and staff",
			SortOrder:   20,
		},
		{
			ID:          ResourceServices,
			Name:        "Services",
			Path:        "/services",
			Icon:        "wrench",
			Description: "Vehicle maintenance and repair history",
			SortOrder:   30,
		},
		{
			ID:          ResourceCertificates,
			Name:        "Certificates",
			Path:        "/certificates",
			Icon:        "award",
			Description: "Employee certificates",
			SortOrder:   40,
		},
		{
			ID:          ResourceLicenses,
			Name:        "Licenses",
			Path:        "/licenses",
			Icon:        "id-card",
			Description: "Employee driving licenses",
			SortOrder:   50,
		},
		{
			ID:          ResourceUsers,
			Name:        "Users",
			Path:        "/users",
			Icon:        "user-cog",
			Description: "Administrator accounts",
			SortOrder:   60,
		},
		{
			ID:          ResourcePermissions,
			Name:        "Permissions",
			Path:        "/permissions",
			Icon:        "shield",
			Description: "Roles and menu permissions",
			SortOrder:   70,
		},
		{
			ID:          ResourceNotifications,
			Name:        "Notifications",
			Path:        "/notifications",
			Icon:        "bell",
			Description: "In-app notifications",
			SortOrder:   80,
		},
	}

	for _, res := range resources {
		if err := Register(res); err != nil {
			panic(err)
		}
	}
}
