package rbac

// System role codes understood by the capability table and the work-order
// workflow. Custom (tenant-defined) roles never appear here; they only
// participate in the database-backed permission entries.
const (
	RoleGlobalAdmin        = "global_admin"
	RoleHospitalAdmin      = "hospital_admin"
	RoleFacilityManager    = "facility_manager"
	RoleMaintenanceManager = "maintenance_manager"
	RoleEngineer           = "engineer"
	RoleSupervisor         = "supervisor"
	RoleSeniorTechnician   = "senior_technician"
	RoleTechnician         = "technician"
	RoleReporter           = "reporter"
)

// rolePriority orders roles most-privileged first. Lookup resolves a user
// holding several roles to the first match in this order; configs are never
// merged, unlike the OR-union the permission resolver applies.
var rolePriority = []string{
	RoleGlobalAdmin,
	RoleHospitalAdmin,
	RoleFacilityManager,
	RoleMaintenanceManager,
	RoleEngineer,
	RoleSupervisor,
	RoleSeniorTechnician,
	RoleTechnician,
	RoleReporter,
}

// managerClassRoles may reassign work orders in pre-completion statuses and
// update work-order details regardless of status.
var managerClassRoles = map[string]struct{}{
	RoleEngineer:           {},
	RoleSupervisor:         {},
	RoleFacilityManager:    {},
	RoleHospitalAdmin:      {},
	RoleMaintenanceManager: {},
}

// IsManagerClass reports whether any of the held role codes belongs to the
// manager class.
func IsManagerClass(roleCodes []string) bool {
	for _, code := range roleCodes {
		if _, ok := managerClassRoles[code]; ok {
			return true
		}
	}
	return false
}

// SystemRoleCodes returns all role codes in priority order.
func SystemRoleCodes() []string {
	out := make([]string, len(rolePriority))
	copy(out, rolePriority)
	return out
}
