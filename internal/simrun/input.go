// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package simrun

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/trimbatch/internal/plan"
	"github.com/spf13/afero"
)

// ErrWriteInput is returned when the simulator input files cannot be written.
var ErrWriteInput = errors.New("failed to write simulator input files")

// MetadataFileName is the simulator input file echoed into each result slot.
// Its third line carries the fragment's requested ion count as the
// third-to-last whitespace-separated token.
const MetadataFileName = "TRIM.IN"

// autoFileName tells the simulator to run unattended and exit when done.
const autoFileName = "TRIMAUTO"

// InputWriter writes the simulator's input-configuration files into a
// working directory. The full input format is owned by the simulator; this
// module only relies on the ion-count position in MetadataFileName.
type InputWriter interface {
	WriteInputs(fs afero.Fs, dir string, cat plan.Category, ions int) error
}

// TrimInput is the default InputWriter. It emits a minimal TRIM.IN driving
// a quick-damage calculation with full collision detail, plus the TRIMAUTO
// flag file.
type TrimInput struct {
	// Description appears on the plot line of TRIM.IN. Quotes are stripped
	// because the simulator's parser cannot cope with them.
	Description string
}

var _ InputWriter = TrimInput{}

// WriteInputs implements InputWriter.
func (w TrimInput) WriteInputs(fs afero.Fs, dir string, cat plan.Category, ions int) error {
	desc := strings.NewReplacer(`"`, "", `'`, "").Replace(w.Description)
	if desc == "" {
		desc = "trimbatch run"
	}

	// Energy is tracked in eV, TRIM.IN wants keV.
	trimIn := fmt.Sprintf(
		"==> SRIM-2013.00 This file controls TRIM Calculations.\r\n"+
			"Ion: Z1 ,  M1,  Energy (keV), Angle,Number,Bragg Corr,AutoSave Number.\r\n"+
			"     %d   %.3f       %.1f       0     %d      1    %d\r\n"+
			"Cascades(1=No;2=Full;3=Sputt;4-5=Ions;6-7=Neutrons), Random Number Seed, Reminders\r\n"+
			"     2     0     0\r\n"+
			"Diskfiles (0=no,1=yes): Ranges, Backscatt, Transmit, Sputtered, Collisions(1=Ion;2=Ion+Recoils), Special EXYZ.txt file\r\n"+
			"     0     0     0     0     2     0\r\n"+
			"Target material : Number of Elements & Layers\r\n"+
			"%q\r\n",
		cat.Z, cat.Mass, cat.Energy/1000, ions, ions, desc)

	if err := afero.WriteFile(fs, filepath.Join(dir, MetadataFileName), []byte(trimIn), sixFourFour); err != nil {
		return errors.Join(ErrWriteInput, err)
	}

	auto := "TRIMAUTO allows TRIM to be run in batch mode.\r\n" +
		"1\r\n" +
		"Runs TRIM using the data in TRIM.IN and exits on completion.\r\n"

	if err := afero.WriteFile(fs, filepath.Join(dir, autoFileName), []byte(auto), sixFourFour); err != nil {
		return errors.Join(ErrWriteInput, err)
	}

	return nil
}
