package permissions

func init() {
	perms := []*Permission{
		{
			ID:          "work_orders.view",
			Module:      "work_orders",
			Description: "View work orders",
		},
		{
			ID:          "work_orders.create",
			Module:      "work_orders",
			Description: "Report new work orders",
		},
		{
			ID:          "work_orders.start_work",
			Module:      "work_orders",
			Description: "Start work on an assigned work order",
		},
		{
			ID:          "work_orders.complete_work",
			Module:      "work_orders",
			Description: "Submit completed work for supervisor approval",
		},
		{
			ID:          "work_orders.approve",
			Module:      "work_orders",
			Description: "Approve completed work as a supervisor",
		},
		{
			ID:          "work_orders.review",
			Module:      "work_orders",
			Description: "Review approved work as an engineer",
		},
		{
			ID:          "work_orders.close",
			Module:      "work_orders",
			Description: "Close a work order as its reporter",
		},
		{
			ID:          "work_orders.reject",
			Module:      "work_orders",
			Description: "Reject a work order at any stage",
		},
		{
			ID:          "work_orders.reassign",
			Module:      "work_orders",
			Description: "Reassign a work order to another technician",
		},
		{
			ID:          "work_orders.update",
			Module:      "work_orders",
			Description: "Update work order details",
		},
		{
			ID:          "assets.view",
			Module:      "assets",
			Description: "View assets",
		},
		{
			ID:          "assets.manage",
			Module:      "assets",
			Description: "Create and update assets",
		},
		{
			ID:          "users.view",
			Module:      "users",
			Description: "View users",
		},
		{
			ID:          "users.manage",
			Module:      "users",
			Description: "Create and update users",
		},
		{
			ID:          "hospitals.view",
			Module:      "hospitals",
			Description: "View hospitals",
		},
		{
			ID:          "hospitals.manage",
			Module:      "hospitals",
			Description: "Create and update hospitals",
		},
		{
			ID:          "notifications.view",
			Module:      "notifications",
			Description: "View own notifications",
		},
		{
			ID:          "notifications.manage",
			Module:      "notifications",
			Description: "Create notifications for other users",
		},
		{
			ID:          "permissions.view",
			Module:      "permissions",
			Description: "View roles and permission entries",
		},
		{
			ID:          "permissions.manage",
			Module:      "permissions",
			Description: "Manage roles, permission entries and user overrides",
		},
		{
			ID:          "audit.view",
			Module:      "audit",
			Description: "View audit logs",
		},
		{
			ID:          "reports.view",
			Module:      "reports",
			Description: "View maintenance reports",
		},
	}

	for _, perm := range perms {
		if err := Register(perm); err != nil {
			panic(err)
		}
	}
}
