/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"errors"
	"fmt"

	"github.com/trustbloc/edge-core/pkg/log"

	"github.com/trustbloc/pass-adapter/pkg/pass"
	"github.com/trustbloc/pass-adapter/pkg/pkpass"
	"github.com/trustbloc/pass-adapter/pkg/signing"
	"github.com/trustbloc/pass-adapter/pkg/template"
)

var logger = log.New("pass-adapter/generator")

// ErrNoSigningMaterial is returned while no signing material has been loaded.
var ErrNoSigningMaterial = errors.New("no signing material loaded")

// Config defines the collaborators of a Generator.
type Config struct {
	Builder   *pass.Builder
	Templates *template.Store
	Keys      *signing.Holder
}

// Result is a generated archive together with the document it contains.
type Result struct {
	SerialNumber string
	Document     *pass.Document
	Archive      []byte
}

// Filename returns the download filename of the archive.
func (r *Result) Filename() string {
	return r.SerialNumber + pkpass.Extension
}

// Generator runs the pass pipeline. It holds no per-call state and is safe for concurrent use.
type Generator struct {
	builder   *pass.Builder
	templates *template.Store
	keys      *signing.Holder
}

// New returns a new Generator.
func New(config *Config) (*Generator, error) {
	if config.Builder == nil {
		return nil, errors.New("pass builder is mandatory")
	}

	if config.Templates == nil {
		return nil, errors.New("template store is mandatory")
	}

	keys := config.Keys
	if keys == nil {
		keys = signing.NewHolder(nil)
	}

	return &Generator{builder: config.Builder, templates: config.Templates, keys: keys}, nil
}

// Keys returns the signing material holder used by the generator.
func (g *Generator) Keys() *signing.Holder {
	return g.keys
}

// Generate builds and signs the pass for merchant and user with the current signing material.
func (g *Generator) Generate(merchant *pass.MerchantData, user *pass.UserData) (*Result, error) {
	material := g.keys.Current()
	if material == nil {
		return nil, &signing.CertificateError{Part: signing.PartCertificate, Err: ErrNoSigningMaterial}
	}

	return g.generate(material, merchant, user)
}

// GenerateWith loads raw signing material for this call only and generates the pass.
// Material errors are reported before any pass content is built.
func (g *Generator) GenerateWith(raw *signing.Raw, merchant *pass.MerchantData,
	user *pass.UserData) (*Result, error) {
	material, err := signing.Load(raw)
	if err != nil {
		return nil, err
	}

	return g.generate(material, merchant, user)
}

func (g *Generator) generate(material *signing.Material, merchant *pass.MerchantData,
	user *pass.UserData) (*Result, error) {
	doc, err := g.builder.Build(merchant, user)
	if err != nil {
		return nil, err
	}

	document, err := doc.Marshal()
	if err != nil {
		return nil, &pkpass.PackagingError{File: pkpass.PassFile, Err: err}
	}

	archive, err := pkpass.Assemble(document, g.templates.Assets(), material)
	if err != nil {
		return nil, fmt.Errorf("pass %s : %w", doc.SerialNumber, err)
	}

	logger.Debugf("generated pass %s for merchant %s signed by %s", doc.SerialNumber, merchant.ID, material)

	return &Result{SerialNumber: doc.SerialNumber, Document: doc, Archive: archive}, nil
}
