package models

// BasicInfo is the small fixed set of identity-relevant text fields extracted
// from the payload. Values are whitespace-trimmed; missing fields are empty
// strings.
type BasicInfo struct {
	DriverName    string `json:"driverName"`
	VehicleNumber string `json:"vehicleNumber"`
	TruckType     string `json:"truckType"`
}

// DocInfo is the derived document identity: two entries with an equal
// DocumentID refer to the same remote record. Exposed read-only for
// diagnostics via the engine's PreviewDocInfo.
type DocInfo struct {
	DocumentID string    `json:"documentId"`
	Collection string    `json:"collection"`
	MonthKey   string    `json:"monthKey"`
	Signature  string    `json:"signature"`
	BasicInfo  BasicInfo `json:"basicInfo"`
}
