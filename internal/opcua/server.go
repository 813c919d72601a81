package opcua

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/motorfleet-simulator/internal/factory"
)

const (
	pkiDir   = "./pki"
	certFile = "./pki/server.crt"
	keyFile  = "./pki/server.key"

	// All motor folders live in one application namespace.
	fleetNamespace uint16 = 2
)

// sensorNodeDef describes one variable node exposed per motor.
type sensorNodeDef struct {
	Name         string
	DisplayName  string
	Description  string
	DataType     ua.NodeID
	InitialValue interface{}
}

// motorNodeSet holds names in the fixed per-motor node layout.
var motorNodeDefs = []sensorNodeDef{
	{"Temperature", "Temperature", "Housing temperature in °C", ua.DataTypeIDDouble, 0.0},
	{"Vibration", "Vibration", "Vibration RMS in mm/s", ua.DataTypeIDDouble, 0.0},
	{"Current", "Current", "Stator current in A", ua.DataTypeIDDouble, 0.0},
	{"RPM", "RPM", "Shaft speed in rpm", ua.DataTypeIDDouble, 0.0},
	{"Health", "Health", "Ground-truth health 0-1", ua.DataTypeIDDouble, 1.0},
	{"HealthState", "Health State", "healthy / warning / critical", ua.DataTypeIDString, "healthy"},
	{"DegradationStage", "Degradation Stage", "Hidden degradation stage", ua.DataTypeIDString, "STAGE_0"},
	{"OperatingRegime", "Operating Regime", "idle / normal / peak", ua.DataTypeIDString, "normal"},
	{"HoursSinceMaintenance", "Hours Since Maintenance", "Operating hours since last overhaul", ua.DataTypeIDDouble, 0.0},
	{"LastMaintenance", "Last Maintenance", "Most recent maintenance event type", ua.DataTypeIDString, ""},
}

// motorNodes is the variable-node set and shadow values for one motor folder.
type motorNodes struct {
	FolderName string
	VarNodes   map[string]*server.VariableNode
	Values     map[string]interface{}
}

// Server wraps the OPC UA server and exposes one folder of sensor and health
// nodes per motor. When the underlying server cannot start (missing PKI,
// port conflicts) it degrades to a value store so the simulation keeps
// running.
type Server struct {
	srv       *server.Server
	port      int
	name      string
	numMotors int
	mu        sync.RWMutex

	motors map[int]*motorNodes
}

// NewServer creates a new OPC UA server for a fleet of the given size.
func NewServer(port int, simulatorName string, numMotors int) (*Server, error) {
	s := &Server{
		port:      port,
		name:      simulatorName,
		numMotors: numMotors,
		motors:    make(map[int]*motorNodes),
	}

	for id := 0; id < numMotors; id++ {
		m := &motorNodes{
			FolderName: fmt.Sprintf("Motor%d", id),
			VarNodes:   make(map[string]*server.VariableNode),
			Values:     make(map[string]interface{}),
		}
		for _, def := range motorNodeDefs {
			m.Values[def.Name] = def.InitialValue
		}
		s.motors[id] = m
	}

	return s, nil
}

// ensurePKI creates PKI directory and self-signed certificates if they don't exist
func ensurePKI(appName string) error {
	if _, err := os.Stat(certFile); err == nil {
		log.Info().Str("certFile", certFile).Msg("Using existing PKI certificates")
		return nil
	}

	log.Info().Msg("Generating self-signed certificates for OPC UA server")

	if err := os.MkdirAll(pkiDir, 0755); err != nil {
		return fmt.Errorf("failed to create PKI directory: %w", err)
	}

	return createSelfSignedCert(appName, certFile, keyFile)
}

// createSelfSignedCert generates a self-signed certificate for OPC UA server
func createSelfSignedCert(appName, certPath, keyPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   appName,
			Organization: []string{"Motor Fleet Simulator"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour), // 1 year validity
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", appName, "motorfleet-simulator"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("0.0.0.0")},
	}

	template.URIs = []*url.URL{
		{Scheme: "urn", Opaque: "motorfleet-simulator:fleet"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	certFileHandle, err := os.Create(certPath)
	if err != nil {
		return fmt.Errorf("failed to create cert file: %w", err)
	}
	defer certFileHandle.Close()

	if err := pem.Encode(certFileHandle, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return fmt.Errorf("failed to encode certificate: %w", err)
	}

	keyFileHandle, err := os.Create(keyPath)
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	defer keyFileHandle.Close()

	keyDER := x509.MarshalPKCS1PrivateKey(privateKey)
	if err := pem.Encode(keyFileHandle, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: keyDER}); err != nil {
		return fmt.Errorf("failed to encode private key: %w", err)
	}

	log.Info().
		Str("certPath", certPath).
		Str("keyPath", keyPath).
		Msg("Self-signed certificates generated successfully")

	return nil
}

// Start starts the OPC UA server.
func (s *Server) Start(ctx context.Context) error {
	endpoint := fmt.Sprintf("opc.tcp://0.0.0.0:%d", s.port)

	log.Info().
		Int("port", s.port).
		Str("endpoint", endpoint).
		Int("motors", s.numMotors).
		Msg("Starting OPC UA server")

	if err := ensurePKI(s.name); err != nil {
		log.Warn().Err(err).Msg("Failed to create PKI - OPC UA server disabled")
		log.Info().Msg("OPC UA server disabled - running simulator in data generation mode only")
		return nil
	}

	// Server creation can panic deep inside the stack on malformed PKI;
	// recover and fall back to value storage mode.
	var srv *server.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn().
					Interface("panic", r).
					Msg("OPC UA server creation panicked - running in value storage mode only")
			}
		}()

		var err error
		srv, err = server.New(
			ua.ApplicationDescription{
				ApplicationURI:  "urn:motorfleet-simulator:fleet",
				ProductURI:      "urn:motorfleet-simulator",
				ApplicationName: ua.LocalizedText{Text: s.name, Locale: "en"},
				ApplicationType: ua.ApplicationTypeServer,
			},
			certFile,
			keyFile,
			endpoint,
			server.WithAnonymousIdentity(true),
			server.WithSecurityPolicyNone(true),
			server.WithInsecureSkipVerify(),
		)
		if err != nil {
			log.Warn().
				Err(err).
				Msg("OPC UA server creation failed - running in value storage mode only")
			srv = nil
		}
	}()

	if srv == nil {
		log.Info().Msg("OPC UA server disabled - running simulator in data generation mode only")
		return nil
	}

	s.srv = srv

	if err := s.registerMotorFolders(); err != nil {
		log.Error().Err(err).Msg("Failed to create OPC UA nodes")
		return err
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("OPC UA server panic")
			}
		}()
		if err := srv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("OPC UA server error")
		}
	}()

	log.Info().Msg("OPC UA server started successfully")
	return nil
}

// Stop stops the OPC UA server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Close()
	}
	return nil
}

// registerMotorFolders creates one folder per motor with the fixed node set.
func (s *Server) registerMotorFolders() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nm := s.srv.NamespaceManager()
	nodeCount := 0

	for id := 0; id < s.numMotors; id++ {
		m := s.motors[id]

		folder := server.NewObjectNode(
			s.srv,
			ua.NodeIDString{NamespaceIndex: fleetNamespace, ID: m.FolderName},
			ua.QualifiedName{NamespaceIndex: fleetNamespace, Name: m.FolderName},
			ua.LocalizedText{Text: m.FolderName},
			ua.LocalizedText{Text: fmt.Sprintf("Induction motor %d telemetry", id)},
			nil,
			[]ua.Reference{
				{
					ReferenceTypeID: ua.ReferenceTypeIDOrganizes,
					IsInverse:       true,
					TargetID:        ua.ExpandedNodeID{NodeID: ua.ObjectIDObjectsFolder},
				},
			},
			0,
		)
		nm.AddNode(folder)

		for _, def := range motorNodeDefs {
			varNode := server.NewVariableNode(
				s.srv,
				ua.NodeIDString{NamespaceIndex: fleetNamespace, ID: m.FolderName + "." + def.Name},
				ua.QualifiedName{NamespaceIndex: fleetNamespace, Name: def.Name},
				ua.LocalizedText{Text: def.DisplayName},
				ua.LocalizedText{Text: def.Description},
				nil,
				[]ua.Reference{
					{
						ReferenceTypeID: ua.ReferenceTypeIDHasComponent,
						IsInverse:       true,
						TargetID:        ua.ExpandedNodeID{NodeID: ua.NodeIDString{NamespaceIndex: fleetNamespace, ID: m.FolderName}},
					},
				},
				ua.NewDataValue(def.InitialValue, 0, time.Now().UTC(), 0, time.Now().UTC(), 0),
				def.DataType,
				ua.ValueRankScalar,
				[]uint32{},
				ua.AccessLevelsCurrentRead,
				250.0,
				false,
				nil,
			)
			nm.AddNode(varNode)
			m.VarNodes[def.Name] = varNode
			nodeCount++
		}
	}

	log.Info().Int("count", nodeCount).Msg("OPC UA nodes registered in address space")
	return nil
}

// UpdateFromRecords pushes the latest telemetry records into the address
// space. Missing sensor values (dropouts) leave the node at its last good
// value; ground truth and labels are always present.
func (s *Server) UpdateFromRecords(records []factory.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, r := range records {
		m, ok := s.motors[r.MotorID]
		if !ok {
			continue
		}

		s.setValue(m, "Health", r.MotorHealth, now)
		s.setValue(m, "HealthState", r.HealthState, now)
		s.setValue(m, "DegradationStage", r.DegradationStage, now)
		s.setValue(m, "OperatingRegime", r.OperatingRegime, now)
		s.setValue(m, "HoursSinceMaintenance", r.HoursSinceMaintenance, now)
		if r.MaintenanceEvent != "" {
			s.setValue(m, "LastMaintenance", r.MaintenanceEvent, now)
		}
		if r.Temperature != nil {
			s.setValue(m, "Temperature", *r.Temperature, now)
		}
		if r.Vibration != nil {
			s.setValue(m, "Vibration", *r.Vibration, now)
		}
		if r.Current != nil {
			s.setValue(m, "Current", *r.Current, now)
		}
		if r.RPM != nil {
			s.setValue(m, "RPM", *r.RPM, now)
		}
	}
}

func (s *Server) setValue(m *motorNodes, name string, value interface{}, timestamp time.Time) {
	m.Values[name] = value
	if node, ok := m.VarNodes[name]; ok {
		node.SetValue(ua.NewDataValue(value, 0, timestamp, 0, timestamp, 0))
	}
}

// GetMotorValue returns the shadow value of one motor node. Works even when
// the OPC UA endpoint is disabled.
func (s *Server) GetMotorValue(motorID int, name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.motors[motorID]
	if !ok {
		return nil, false
	}
	value, ok := m.Values[name]
	return value, ok
}
