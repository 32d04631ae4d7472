/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pass

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trustbloc/edge-core/pkg/log"
)

var logger = log.New("pass-adapter/pass")

const (
	formatVersion = 1

	defaultLocationRadius  = 100
	defaultBackgroundColor = "rgb(255, 255, 255)"
	defaultDescription     = "Coupon"

	maxDisplayText  = 60
	maxLogoText     = 20
	nearbyTemplate  = "%s is nearby"
	barcodeTemplate = "%s:%s:%s"
)

// serialNamespace scopes serial numbers generated by this service.
// nolint: gochecknoglobals
var serialNamespace = uuid.MustParse("8d7a4f3e-2c1b-5e60-9f0a-6b3c2d1e4f5a")

// Config defines the issuer identity and styling defaults of every pass.
type Config struct {
	PassTypeID       string
	TeamID           string
	OrganizationName string
	Description      string

	// DefaultColor is used when the merchant color is missing or cannot be parsed.
	DefaultColor string

	// LocationRadius is the relevance radius in meters. Zero means 100.
	LocationRadius float64

	WebServiceURL   string
	AuthTokenSecret []byte
}

// Builder turns merchant and user data into pass documents.
type Builder struct {
	passTypeID       string
	teamID           string
	organizationName string
	description      string
	defaultColor     string
	locationRadius   float64
	webServiceURL    string
	authTokenSecret  []byte
}

// NewBuilder returns a new pass Builder.
func NewBuilder(config *Config) (*Builder, error) {
	if config.PassTypeID == "" {
		return nil, errors.New("pass type identifier is mandatory")
	}

	if config.TeamID == "" {
		return nil, errors.New("team identifier is mandatory")
	}

	if config.OrganizationName == "" {
		return nil, errors.New("organization name is mandatory")
	}

	if config.WebServiceURL != "" && len(config.AuthTokenSecret) == 0 {
		return nil, errors.New("an authentication token secret is required with a web service url")
	}

	if config.LocationRadius < 0 {
		return nil, fmt.Errorf("invalid location radius %f", config.LocationRadius)
	}

	b := &Builder{
		passTypeID:       config.PassTypeID,
		teamID:           config.TeamID,
		organizationName: config.OrganizationName,
		description:      config.Description,
		defaultColor:     config.DefaultColor,
		locationRadius:   config.LocationRadius,
		webServiceURL:    config.WebServiceURL,
		authTokenSecret:  config.AuthTokenSecret,
	}

	if b.description == "" {
		b.description = defaultDescription
	}

	if b.defaultColor == "" {
		b.defaultColor = defaultBackgroundColor
	}

	if b.locationRadius == 0 {
		b.locationRadius = defaultLocationRadius
	}

	return b, nil
}

// PassTypeID returns the pass type identifier stamped on every document.
func (b *Builder) PassTypeID() string {
	return b.passTypeID
}

// Build creates the pass document for the merchant offer claimed by the user.
func (b *Builder) Build(merchant *MerchantData, user *UserData) (*Document, error) {
	if err := merchant.Validate(); err != nil {
		return nil, err
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	serial := SerialNumber(merchant.ID, user.ID)
	colors := themeFor(merchant.Color, b.defaultColor)

	barcode := Barcode{
		Format:          BarcodeFormatQR,
		Message:         fmt.Sprintf(barcodeTemplate, merchant.ID, user.ID, serial),
		MessageEncoding: BarcodeEncodingLatin,
		AltText:         user.ID,
	}

	doc := &Document{
		FormatVersion:      formatVersion,
		PassTypeIdentifier: b.passTypeID,
		SerialNumber:       serial,
		TeamIdentifier:     b.teamID,
		OrganizationName:   b.organizationName,
		Description:        b.description,
		LogoText:           merchant.LogoText,
		BackgroundColor:    colors.background,
		ForegroundColor:    colors.foreground,
		LabelColor:         colors.label,
		Barcode:            &barcode,
		Barcodes:           []Barcode{barcode},
		Coupon:             b.structure(merchant, user),
	}

	if !merchant.ExpirationDate.IsZero() {
		doc.ExpirationDate = merchant.ExpirationDate.UTC().Format(time.RFC3339)
	}

	if merchant.HasLocation() {
		doc.Locations = []Location{{
			Latitude:     *merchant.Latitude,
			Longitude:    *merchant.Longitude,
			RelevantText: relevantText(merchant),
		}}
		doc.MaxDistance = b.locationRadius
	}

	if b.webServiceURL != "" {
		doc.WebServiceURL = b.webServiceURL
		doc.AuthenticationToken = b.authToken(serial)
	}

	checkTextLengths(doc)

	return doc, nil
}

func (b *Builder) structure(merchant *MerchantData, user *UserData) *Structure {
	notRelative := false

	offer := merchant.Description
	if offer == "" {
		offer = merchant.Name
	}

	s := &Structure{
		PrimaryFields: []Field{
			{Key: "offer", Label: merchant.Name, Value: offer},
		},
		SecondaryFields: []Field{
			{Key: "holder", Label: "Holder", Value: user.DisplayName()},
		},
		AuxiliaryFields: []Field{
			{Key: "merchant", Label: "Merchant", Value: merchant.Name},
		},
		BackFields: []Field{
			{Key: "terms", Label: "Offer", Value: offer},
			{Key: "claim", Label: "Claim ID", Value: user.ID},
		},
	}

	if !merchant.ExpirationDate.IsZero() {
		s.AuxiliaryFields = append([]Field{{
			Key:        "expires",
			Label:      "Expires",
			Value:      merchant.ExpirationDate.UTC().Format(time.RFC3339),
			DateStyle:  DateStyleMedium,
			IsRelative: &notRelative,
		}}, s.AuxiliaryFields...)
	}

	if merchant.Address != "" {
		s.BackFields = append(s.BackFields, Field{Key: "address", Label: "Address", Value: merchant.Address})
	}

	return s
}

func (b *Builder) authToken(serial string) string {
	mac := hmac.New(sha256.New, b.authTokenSecret)
	mac.Write([]byte(serial)) // nolint: errcheck,gosec

	return hex.EncodeToString(mac.Sum(nil))
}

// SerialNumber derives the pass serial number from the claim identity.
// The same merchant and user always produce the same serial.
func SerialNumber(merchantID, userID string) string {
	name := fmt.Sprintf("%d:%s%s", len(merchantID), merchantID, userID)

	return uuid.NewSHA1(serialNamespace, []byte(name)).String()
}

func relevantText(merchant *MerchantData) string {
	if strings.TrimSpace(merchant.RelevantText) != "" {
		return merchant.RelevantText
	}

	return fmt.Sprintf(nearbyTemplate, merchant.Name)
}

// checkTextLengths only reports; the wallet truncates long text on its own.
func checkTextLengths(doc *Document) {
	if len([]rune(doc.LogoText)) > maxLogoText {
		logger.Debugf("pass %s: logo text is longer than %d characters", doc.SerialNumber, maxLogoText)
	}

	for _, group := range [][]Field{
		doc.Coupon.PrimaryFields, doc.Coupon.SecondaryFields, doc.Coupon.AuxiliaryFields,
	} {
		for _, f := range group {
			if len([]rune(f.Value)) > maxDisplayText {
				logger.Debugf("pass %s: field %s is longer than %d characters", doc.SerialNumber, f.Key, maxDisplayText)
			}
		}
	}
}
