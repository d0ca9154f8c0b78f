// Package sandbox builds a self-contained environment for local runs: a
// request list, a SQLite registry and a stub CIP-API answering for both.
package sandbox

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/gwrecon/internal/adapters/cipapi"
	"github.com/okian/gwrecon/internal/domain/model"
)

// MinRows is the smallest fixture that still has a matched, an unresolved
// and a missing participant row.
const MinRows = 3

const (
	firstRequestNumber = 10000
	firstFamilyID      = 200000
	firstParticipantID = 110000000
	cipName            = "omicia"
	sourceCode         = "OPA"
)

var (
	lastNames  = []string{"Doe", "Smith", "Patel", "Jones", "Khan", "Evans", "Taylor", "Brown"}
	firstNames = []string{"Jane", "John", "Amir", "Sara", "Lena", "Tom", "Ruth", "Owen"}
	genders    = []string{"Female", "Male", "Unknown"}

	trustNamespace = uuid.MustParse("6f1c2f8e-8a57-4d1e-9c3b-2d0f5b7a4e10")
)

// Request is one generated input row and the proband CIP-API reports for it.
type Request struct {
	RequestID     string
	RequestNumber string
	Version       string
	FamilyID      string
	Proband       string
}

// Fixture is a consistent set of requests and registry rows.
//
// Request 2 has no proband, the last request's proband is absent from the
// registry, and the registry carries unrequested participants as well.
type Fixture struct {
	Requests []Request
	Registry []model.RegistryRecord
}

// Generate builds a fixture of rows requests. The same seed always yields the
// same fixture.
func Generate(rows int, seed uint64) (Fixture, error) {
	if rows < MinRows {
		return Fixture{}, fmt.Errorf("%w: need at least %d rows, got %d", ErrInvalidFixture, MinRows, rows)
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	fx := Fixture{Requests: make([]Request, 0, rows)}
	for i := 0; i < rows; i++ {
		number := strconv.Itoa(firstRequestNumber + i)
		version := strconv.Itoa(1 + rng.IntN(2))
		req := Request{
			RequestID:     sourceCode + "-" + number + "-" + version,
			RequestNumber: number,
			Version:       version,
			FamilyID:      strconv.Itoa(firstFamilyID + i),
			Proband:       strconv.Itoa(firstParticipantID + i),
		}
		switch i {
		case 1:
			req.Proband = ""
		case rows - 1:
		default:
			fx.Registry = append(fx.Registry, registryRecord(rng, seed, req.Proband))
		}
		fx.Requests = append(fx.Requests, req)
	}

	// Participants nobody asked about.
	for i := 0; i < rows/2+1; i++ {
		id := strconv.Itoa(firstParticipantID + rows + i)
		fx.Registry = append(fx.Registry, registryRecord(rng, seed, id))
	}
	rng.Shuffle(len(fx.Registry), func(a, b int) {
		fx.Registry[a], fx.Registry[b] = fx.Registry[b], fx.Registry[a]
	})
	return fx, nil
}

func registryRecord(rng *rand.Rand, seed uint64, participantID string) model.RegistryRecord {
	trust := uuid.NewSHA1(trustNamespace, []byte(strconv.FormatUint(seed, 10)+"/"+participantID))
	return model.RegistryRecord{
		TrustID:       "RX" + strings.ToUpper(trust.String()[:8]),
		LastName:      lastNames[rng.IntN(len(lastNames))],
		FirstName:     firstNames[rng.IntN(len(firstNames))],
		DateOfBirth:   fmt.Sprintf("%04d-%02d-%02d", 1940+rng.IntN(70), 1+rng.IntN(12), 1+rng.IntN(28)),
		ParticipantID: participantID,
		NHSNumber:     fmt.Sprintf("%010d", rng.Int64N(10_000_000_000)),
		Gender:        genders[rng.IntN(len(genders))],
	}
}

// InterpretationRequests answers CIP-API lookups from the fixture.
func (f Fixture) InterpretationRequests(_ context.Context, requestNumber string) ([]cipapi.InterpretationRequest, error) {
	var out []cipapi.InterpretationRequest
	for _, r := range f.Requests {
		if r.RequestNumber != requestNumber {
			continue
		}
		out = append(out, cipapi.InterpretationRequest{
			InterpretationRequestID: cipapi.Text(r.RequestNumber),
			Version:                 cipapi.Text(r.Version),
			CIP:                     cipName,
			Proband:                 cipapi.Text(r.Proband),
			FamilyID:                cipapi.Text(r.FamilyID),
		})
	}
	return out, nil
}
