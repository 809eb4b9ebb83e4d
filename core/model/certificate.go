package model

import "time"

// CertificateStatus is the validity state of a fitness certificate.
type CertificateStatus string

const (
	CertificateValid   CertificateStatus = "Valid"
	CertificatePending CertificateStatus = "Pending"
	CertificateExpired CertificateStatus = "Expired"
)

// Certificate is a fitness certificate held by a vehicle. A vehicle is
// dispatch-eligible only while every certificate it holds is Valid.
type Certificate struct {
	VehicleID string
	Type      string
	Issued    time.Time
	Expiry    time.Time
	Status    CertificateStatus
}
