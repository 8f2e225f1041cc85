// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"fmt"
	"math"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/artificial_horizon/internal/orientation"
)

// NMEA 0183 transducer names used for attitude in XDR sentences.
const (
	xdrPitch = "PTCH"
	xdrRoll  = "ROLL"
)

// FormatXDR renders st as an XDR angular-displacement sentence in degrees,
// e.g. "$HCXDR,A,-2.5,D,PTCH,A,10.0,D,ROLL*hh".
func FormatXDR(st orientation.State) string {
	roll, pitch := st.Degrees()
	body := fmt.Sprintf("HCXDR,A,%.1f,D,%s,A,%.1f,D,%s", pitch, xdrPitch, roll, xdrRoll)
	return "$" + body + "*" + nmea.Checksum(body)
}

// ParseXDR extracts roll and pitch from an XDR sentence carrying PTCH and
// ROLL angular measurements.
func ParseXDR(line string) (orientation.State, error) {
	s, err := nmea.Parse(line)
	if err != nil {
		return orientation.State{}, fmt.Errorf("parse nmea: %w", err)
	}
	xdr, ok := s.(nmea.XDR)
	if !ok {
		return orientation.State{}, fmt.Errorf("sentence type %s is not XDR", s.DataType())
	}

	var (
		st                  orientation.State
		haveRoll, havePitch bool
	)
	for _, m := range xdr.Measurements {
		if m.TransducerType != "A" || m.Unit != "D" {
			continue
		}
		switch m.TransducerName {
		case xdrRoll:
			st.Roll, haveRoll = m.Value*math.Pi/180, true
		case xdrPitch:
			st.Pitch, havePitch = m.Value*math.Pi/180, true
		}
	}
	if !haveRoll || !havePitch {
		return orientation.State{}, fmt.Errorf("xdr sentence without roll and pitch")
	}
	return st, nil
}
