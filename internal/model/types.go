package model

// -----------------------------------------------------------------------------
// Request lifecycle
// -----------------------------------------------------------------------------

// RequestStatus is the lifecycle state of a service request.
type RequestStatus string

const (
	StatusPending          RequestStatus = "pending"
	StatusAwaitingApproval RequestStatus = "awaiting_approval"
	StatusAwaitingPayment  RequestStatus = "awaiting_payment"
	StatusInProgress       RequestStatus = "in_progress"
	StatusCompleted        RequestStatus = "completed"
	StatusCancelled        RequestStatus = "cancelled"
)

var requestStatusLabels = map[RequestStatus]string{
	StatusPending:          "Beklemede",
	StatusAwaitingApproval: "Onay Bekleniyor",
	StatusAwaitingPayment:  "Odeme Bekleniyor",
	StatusInProgress:       "Devam Ediyor",
	StatusCompleted:        "Tamamlandi",
	StatusCancelled:        "Iptal Edildi",
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	_, ok := requestStatusLabels[s]
	return ok
}

// Label returns the display name, or the raw value for unknown statuses.
func (s RequestStatus) Label() string {
	if l, ok := requestStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal reports whether no further status changes are expected.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// -----------------------------------------------------------------------------
// Service and vehicle catalogs
// -----------------------------------------------------------------------------

// ServiceType is the kind of roadside service requested.
type ServiceType string

const (
	ServiceTowTruck         ServiceType = "towTruck"
	ServiceCrane            ServiceType = "crane"
	ServiceRoadAssistance   ServiceType = "roadAssistance"
	ServiceHomeToHomeMoving ServiceType = "homeToHomeMoving"
	ServiceCityToCity       ServiceType = "cityToCity"
)

var serviceTypeLabels = map[ServiceType]string{
	ServiceTowTruck:         "Cekici",
	ServiceCrane:            "Vinc",
	ServiceRoadAssistance:   "Yol Yardimi",
	ServiceHomeToHomeMoving: "Evden Eve Nakliyat",
	ServiceCityToCity:       "Sehirler Arasi",
}

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	_, ok := serviceTypeLabels[t]
	return ok
}

// Label returns the display name, or the raw value for unknown types.
func (t ServiceType) Label() string {
	if l, ok := serviceTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// NeedsDropoff reports whether the service moves something to a destination.
func (t ServiceType) NeedsDropoff() bool {
	return t != ServiceRoadAssistance
}

// VehicleType is the vehicle class used for tow-truck pricing.
type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleSUV        VehicleType = "suv"
	VehicleCommercial VehicleType = "commercial"
	VehicleMinibus    VehicleType = "minibus"
	VehicleTruck      VehicleType = "truck"
	VehicleTractor    VehicleType = "tractor"
)

var vehicleTypeLabels = map[VehicleType]string{
	VehicleCar:        "Otomobil",
	VehicleMotorcycle: "Motosiklet",
	VehicleSUV:        "Arazi Araci / SUV",
	VehicleCommercial: "Ticari Arac",
	VehicleMinibus:    "Minibus",
	VehicleTruck:      "Kamyon / TIR",
	VehicleTractor:    "Traktor",
}

// Valid reports whether v is a known vehicle type.
func (v VehicleType) Valid() bool {
	_, ok := vehicleTypeLabels[v]
	return ok
}

// Label returns the display name, or the raw value for unknown types.
func (v VehicleType) Label() string {
	if l, ok := vehicleTypeLabels[v]; ok {
		return l
	}
	return string(v)
}

// Location is an address with coordinates.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
