package rbac

// ViewScope describes the breadth of records a role may see in a module.
type ViewScope string

const (
	ScopeAll  ViewScope = "all"
	ScopeTeam ViewScope = "team"
	ScopeOwn  ViewScope = "own"
)

// Module names used by the capability table.
const (
	ModuleWorkOrders    = "work_orders"
	ModuleAssets        = "assets"
	ModuleUsers         = "users"
	ModuleHospitals     = "hospitals"
	ModuleReports       = "reports"
	ModuleNotifications = "notifications"
)

// WorkOrderCapability enumerates the workflow affordances a role carries.
// The capability table predates the database-backed permission resolver and
// remains authoritative for work-order view scope; fine-grained action
// gating elsewhere belongs to the resolver.
type WorkOrderCapability struct {
	View         ViewScope
	Create       bool
	Start        bool
	Complete     bool
	Approve      bool
	Review       bool
	FinalApprove bool
	Reject       bool
	Reassign     bool
	Update       bool
}

// ModuleCapability is the coarse descriptor for non-workflow modules.
type ModuleCapability struct {
	View    ViewScope
	Actions []string
}

// RoleConfig is the capability descriptor for a single role code.
type RoleConfig struct {
	Code       string
	WorkOrders WorkOrderCapability
	Modules    map[string]ModuleCapability
}

var roleConfigs = map[string]*RoleConfig{
	RoleGlobalAdmin: {
		Code: RoleGlobalAdmin,
		WorkOrders: WorkOrderCapability{
			View: ScopeAll, Create: true, Approve: true, Review: true,
			FinalApprove: true, Reject: true, Reassign: true, Update: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeAll, Actions: []string{"create", "update", "delete"}},
			ModuleUsers:         {View: ScopeAll, Actions: []string{"create", "update", "delete", "assign_roles"}},
			ModuleHospitals:     {View: ScopeAll, Actions: []string{"create", "update", "delete"}},
			ModuleReports:       {View: ScopeAll, Actions: []string{"view"}},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view", "manage"}},
		},
	},
	RoleHospitalAdmin: {
		Code: RoleHospitalAdmin,
		WorkOrders: WorkOrderCapability{
			View: ScopeAll, Create: true, Approve: true, Review: true,
			FinalApprove: true, Reject: true, Reassign: true, Update: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeAll, Actions: []string{"create", "update", "delete"}},
			ModuleUsers:         {View: ScopeAll, Actions: []string{"create", "update", "assign_roles"}},
			ModuleHospitals:     {View: ScopeOwn, Actions: []string{"update"}},
			ModuleReports:       {View: ScopeAll, Actions: []string{"view"}},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleFacilityManager: {
		Code: RoleFacilityManager,
		WorkOrders: WorkOrderCapability{
			View: ScopeAll, Create: true, Approve: true, Review: true,
			FinalApprove: true, Reject: true, Reassign: true, Update: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeAll, Actions: []string{"create", "update"}},
			ModuleReports:       {View: ScopeAll, Actions: []string{"view"}},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleMaintenanceManager: {
		Code: RoleMaintenanceManager,
		WorkOrders: WorkOrderCapability{
			View: ScopeAll, Create: true, Review: true, FinalApprove: true,
			Reject: true, Reassign: true, Update: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeAll, Actions: []string{"update"}},
			ModuleReports:       {View: ScopeAll, Actions: []string{"view"}},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleEngineer: {
		Code: RoleEngineer,
		WorkOrders: WorkOrderCapability{
			View: ScopeAll, Review: true, Reject: true, Reassign: true, Update: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeAll, Actions: []string{"update"}},
			ModuleReports:       {View: ScopeTeam, Actions: []string{"view"}},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleSupervisor: {
		Code: RoleSupervisor,
		WorkOrders: WorkOrderCapability{
			View: ScopeTeam, Approve: true, Reject: true, Reassign: true, Update: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeTeam},
			ModuleReports:       {View: ScopeTeam, Actions: []string{"view"}},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleSeniorTechnician: {
		Code: RoleSeniorTechnician,
		WorkOrders: WorkOrderCapability{
			View: ScopeTeam, Start: true, Complete: true, Reject: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeTeam},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleTechnician: {
		Code: RoleTechnician,
		WorkOrders: WorkOrderCapability{
			View: ScopeOwn, Start: true, Complete: true, Reject: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleAssets:        {View: ScopeTeam},
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
	RoleReporter: {
		Code: RoleReporter,
		WorkOrders: WorkOrderCapability{
			View: ScopeOwn, Create: true, Reject: true,
		},
		Modules: map[string]ModuleCapability{
			ModuleNotifications: {View: ScopeOwn, Actions: []string{"view"}},
		},
	},
}

// GetCapabilities returns the capability descriptor for a role code, or nil
// when the code is not a system role.
func GetCapabilities(roleCode string) *RoleConfig {
	return roleConfigs[roleCode]
}

// Lookup resolves a set of held role codes to a single config using strict
// priority order: the first (most-privileged) matching role wins, and lower
// roles contribute nothing. Returns nil when no held code is a system role.
func Lookup(roleCodes []string) *RoleConfig {
	held := make(map[string]struct{}, len(roleCodes))
	for _, code := range roleCodes {
		held[code] = struct{}{}
	}
	for _, code := range rolePriority {
		if _, ok := held[code]; ok {
			return roleConfigs[code]
		}
	}
	return nil
}

// HasModuleAccess reports whether the config allows the named action in the
// named module.
func HasModuleAccess(cfg *RoleConfig, module, action string) bool {
	if cfg == nil {
		return false
	}
	if module == ModuleWorkOrders {
		return workOrderAction(cfg.WorkOrders, action)
	}
	mod, ok := cfg.Modules[module]
	if !ok {
		return false
	}
	for _, a := range mod.Actions {
		if a == action {
			return true
		}
	}
	return false
}

func workOrderAction(cap WorkOrderCapability, action string) bool {
	switch action {
	case "create":
		return cap.Create
	case "start":
		return cap.Start
	case "complete":
		return cap.Complete
	case "approve":
		return cap.Approve
	case "review":
		return cap.Review
	case "final_approve":
		return cap.FinalApprove
	case "reject":
		return cap.Reject
	case "reassign":
		return cap.Reassign
	case "update":
		return cap.Update
	default:
		return false
	}
}
