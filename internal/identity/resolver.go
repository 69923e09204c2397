// Package identity derives the stable document identity that decides which
// remote record a save belongs to. Resolution is a pure function of the entry:
// no side effects, no network access, same input bytes produce the same
// document id on every platform and every run. That determinism is what makes
// merge-upsert safe instead of append-only writes.
package identity

import (
	"fmt"
	"hash/fnv"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/rmura/formsync/models"
)

const (
	// maxComponentLen caps each id component before assembly.
	maxComponentLen = 120
	// maxDocumentIDLen caps the assembled document id to satisfy the remote
	// store's key constraints.
	maxDocumentIDLen = 200
)

// Identity-relevant payload fields. When the payload nests its form state
// under "current", fields are read from that section; otherwise from the top
// level.
const (
	sectionCurrent      = "current"
	fieldInspectionDate = "inspectionDate"
	fieldDriverName     = "driverName"
	fieldVehicleNumber  = "vehicleNumber"
	fieldTruckType      = "truckType"
)

var (
	inspectionDateRe = regexp.MustCompile(`^(\d{4}-\d{2})-\d{2}`)
	idCharRe         = regexp.MustCompile(`[^A-Za-z0-9_-]`)
)

// Resolver computes document identities for a fixed prefix and company code.
type Resolver struct {
	prefix      string
	companyCode string
	collection  string
}

// NewResolver constructs a Resolver. prefix and companyCode become the first
// two components of every document id; collection is carried into DocInfo for
// diagnostics only.
func NewResolver(prefix, companyCode, collection string) *Resolver {
	return &Resolver{prefix: prefix, companyCode: companyCode, collection: collection}
}

// MonthKey extracts "YYYY-MM" from the payload's inspection-date field
// (pattern "YYYY-MM-DD"). If the field is absent or malformed it falls back
// to the calendar month of now. Callers snapshot the result into the
// SaveEntry at creation time so delayed retries cannot drift across a month
// boundary.
func MonthKey(p models.Payload, now time.Time) string {
	date := strings.TrimSpace(identityFields(p).Text(fieldInspectionDate))
	if m := inspectionDateRe.FindStringSubmatch(date); m != nil {
		return m[1]
	}
	return now.Format("2006-01")
}

// ExtractBasicInfo returns the trimmed identity text fields of the payload.
// Missing fields read as empty strings.
func ExtractBasicInfo(p models.Payload) models.BasicInfo {
	f := identityFields(p)
	return models.BasicInfo{
		DriverName:    strings.TrimSpace(f.Text(fieldDriverName)),
		VehicleNumber: strings.TrimSpace(f.Text(fieldVehicleNumber)),
		TruckType:     strings.TrimSpace(f.Text(fieldTruckType)),
	}
}

// Signature computes the basic signature: a deterministic, order-sensitive
// 32-bit FNV-1a hash over the pipe-joined month key and identity text fields,
// rendered as 8 lowercase hex characters.
func Signature(monthKey string, info models.BasicInfo) string {
	h := fnv.New32a()
	_, _ = io.WriteString(h, strings.Join([]string{
		monthKey,
		info.DriverName,
		info.VehicleNumber,
		info.TruckType,
	}, "|"))

	return fmt.Sprintf("%08x", h.Sum32())
}

// Resolve computes the full document identity for entry. Resolving the same
// entry twice yields an identical id.
func (r *Resolver) Resolve(entry models.SaveEntry) models.DocInfo {
	info := ExtractBasicInfo(entry.Payload)
	sig := Signature(entry.MonthKey, info)

	return models.DocInfo{
		DocumentID: BuildDocumentID(r.prefix, r.companyCode, entry.MonthKey, sig),
		Collection: r.collection,
		MonthKey:   entry.MonthKey,
		Signature:  sig,
		BasicInfo:  info,
	}
}

// BuildDocumentID assembles "{prefix}_{companyCode}_{monthKey}_{signature}".
// Each component is sanitized to [A-Za-z0-9_-] (other characters become "_")
// and length-capped; the whole id is capped as well.
func BuildDocumentID(prefix, companyCode, monthKey, signature string) string {
	id := strings.Join([]string{
		sanitizeComponent(prefix),
		sanitizeComponent(companyCode),
		sanitizeComponent(monthKey),
		sanitizeComponent(signature),
	}, "_")

	if len(id) > maxDocumentIDLen {
		id = id[:maxDocumentIDLen]
	}
	return id
}

func sanitizeComponent(s string) string {
	s = idCharRe.ReplaceAllString(strings.TrimSpace(s), "_")
	if len(s) > maxComponentLen {
		s = s[:maxComponentLen]
	}
	return s
}

func identityFields(p models.Payload) models.Payload {
	if cur := p.Section(sectionCurrent); cur != nil {
		return cur
	}
	return p
}
