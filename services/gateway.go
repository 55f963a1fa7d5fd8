package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	"vehicle-service-server/config"
)

// PaymentGateway is the slice of the gateway SDK the reconciler consumes.
type PaymentGateway interface {
	CreateOrder(amount float64) (orderID string, err error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// HMACGateway verifies callbacks with the gateway's shared-secret scheme:
// hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
type HMACGateway struct {
	keyID     string
	keySecret string
}

func NewHMACGateway() *HMACGateway {
	return &HMACGateway{
		keyID:     config.AppConfig.Gateway.KeyID,
		keySecret: config.AppConfig.Gateway.KeySecret,
	}
}

// NewHMACGatewayWithKeys builds a gateway client with explicit credentials.
func NewHMACGatewayWithKeys(keyID, keySecret string) *HMACGateway {
	return &HMACGateway{keyID: keyID, keySecret: keySecret}
}

// CreateOrder issues an order reference scoped to the merchant key.
func (g *HMACGateway) CreateOrder(amount float64) (string, error) {
	return g.keyID + "_order_" + uuid.NewString(), nil
}

func (g *HMACGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// TaxRateProvider supplies the current GST percentage.
type TaxRateProvider interface {
	CurrentGSTPercent() float64
}

// ConfigTaxProvider reads the GST rate from the loaded configuration.
type ConfigTaxProvider struct{}

func (ConfigTaxProvider) CurrentGSTPercent() float64 {
	return config.AppConfig.Tax.GSTPercent
}
