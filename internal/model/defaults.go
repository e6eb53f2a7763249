package model

// Built-in reference data used whenever the cached configuration is empty or
// the feed is unreachable. The lists mirror the facility's commissioning
// inventory.

// DefaultAdminUsername is the emergency admin account that must survive every
// user sync and can never be deleted.
const DefaultAdminUsername = "KhaingThwin"

func DefaultAdmin() User {
	return User{
		Username: DefaultAdminUsername,
		Password: "Khaingthwin2025",
		Name:     "System Admin",
		Role:     RoleAdmin,
	}
}

func DefaultMachines() []Machine {
	return []Machine{
		{ID: "cf-01", Name: "Chest Freezer 01", Type: MachineFreezer, DefaultSetpoint: -18},
	}
}

func DefaultMeters() []Meter {
	return []Meter{
		{ID: "m-01", Name: "Main Meter"},
		{ID: "m-02", Name: "Load 1"},
		{ID: "m-03", Name: "Load 2"},
		{ID: "m-04", Name: "Female Hostel"},
		{ID: "m-05", Name: "Male Hostel"},
		{ID: "m-06", Name: "Warehouse"},
		{ID: "m-07", Name: "Office"},
		{ID: "m-08", Name: "K1"},
		{ID: "m-09", Name: "K2"},
		{ID: "m-10", Name: "Solar Power"},
	}
}

func DefaultGenerators() []Generator {
	return []Generator{
		{ID: "KMD", Name: "KMD", Model: "Pai Kane", AirFilter: "A-5541-S", OilFilter: "C-1701", FuelFilter: "FC-52040"},
		{ID: "HLD", Name: "HLD", Model: "Gesan", AirFilter: "A-7003-S", OilFilter: "C-5102, C-7103", FuelFilter: "EF-51040"},
		{ID: "LMD", Name: "LMD", Model: "Denyo", AirFilter: "A-5628", OilFilter: "O-1314, BO-177", FuelFilter: "F-1303", FanBelt: "B-50"},
		{ID: "Sule", Name: "Sule", Model: "Gesan", AirFilter: "WHK 1930587, A-7003-S", OilFilter: "C-5102", FuelFilter: "EF-51040", FanBelt: "EO 8.5L, CL 14L"},
		{ID: "BAK", Name: "BAK", Model: "Gesan", AirFilter: "WHK 1930587, A-7003-S", OilFilter: "C-5102", FuelFilter: "EF-51040"},
		{ID: "TSL", Name: "TSL", Model: "Denyo", AirFilter: "HMG-056D, K-1530, A-5558", OilFilter: "O1301", FuelFilter: "BF-101", FanBelt: "RECMF-8480"},
		{ID: "TGG", Name: "TGG", Model: "Pai Kane 30kva", AirFilter: "A-8506-S", OilFilter: "C-1701", FuelFilter: "FC-52040", WaterSeparator: "F-1004"},
		{ID: "SBT", Name: "SBT", Model: "Denyo", AirFilter: "A-5628", OilFilter: "O-13254", FuelFilter: "FC-1503", FanBelt: "B-50"},
		{ID: "SPT", Name: "SPT", Model: "Pai Kane", AirFilter: "A-5541-S", OilFilter: "C-1701", FuelFilter: "FC-52040"},
		{ID: "ND", Name: "ND", Model: "Denyo", AirFilter: "A-1014", OilFilter: "BO-177", FuelFilter: "FC-1004, FC-1020", FanBelt: "RECMF-8480"},
		{ID: "ZM", Name: "ZM", Model: "Gesan", AirFilter: "WHK 1930587, A-7003-S", OilFilter: "C-5102", FuelFilter: "EF-51040"},
		{ID: "HW", Name: "HW", Model: "Denyo", AirFilter: "A-6012", OilFilter: "CO-1304", FuelFilter: "FC-1503"},
		{ID: "TKT", Name: "TKT", Model: "Gesan", AirFilter: "AS-51540", OilFilter: "C-1142", FuelFilter: "FC-1702", FanBelt: "RECMF 6385"},
		{ID: "IS", Name: "IS", Model: "Denyo", AirFilter: "A1176", OilFilter: "O1301", FuelFilter: "F-1303", FanBelt: "B-50"},
		{ID: "MNG", Name: "MNG", Model: "Denyo", AirFilter: "A-5628", OilFilter: "BO-177", FuelFilter: "F-1303", FanBelt: "RCMF 8500"},
		{ID: "Parami", Name: "Parami", Model: "Gesan", AirFilter: "A-8506-S", OilFilter: "C-5102", FuelFilter: "EF 51040", FanBelt: "RECMF 6530"},
		{ID: "K1", Name: "K1", Model: "Kohler", AirFilter: "A-2418", OilFilter: "C-5501*2, C-5717", FuelFilter: "FC-7108/ FC-7104", FanBelt: "41468/ 330051537", WaterSeparator: "SFC-7103-30, GM41512"},
		{ID: "K2", Name: "K2", Model: "Kohler", AirFilter: "A-2418", OilFilter: "C-5501*2, C-5717", FuelFilter: "FC-7108/ FC-7105", FanBelt: "41468/ 330051537", WaterSeparator: "SFC-7103-30, GM41512"},
	}
}
