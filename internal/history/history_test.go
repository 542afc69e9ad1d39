// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package history

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
)

// collisionFile builds a synthetic raw history file with one cascade-start
// event per ion, numbered from 1, in the simulator's mixed text/drawing
// byte format.
func collisionFile(ions int) []byte {
	b := &bytes.Buffer{}
	b.WriteString("====== TRIM Calculation ======\r\n")
	b.WriteString("Ion Data\r\n")
	b.WriteString("==========================  COLLISION HISTORY  ======================\r\n")

	for i := range postMarkerHeaderLines {
		fmt.Fprintf(b, "column header %d\r\n", i)
	}

	for i := 1; i <= ions; i++ {
		b.Write(cascadeLine(i, 100, 200, 300))
	}

	return b.Bytes()
}

func cascadeLine(ion int, x, y, z float64) []byte {
	return fmt.Appendf(nil,
		"\xb3For Ion %07d\xb3 2.5E+03\xb3 %.1f\xb3 %.1f\xb3 %.1f\xb3 Start of New Cascade  \xb3\r\n",
		ion, x, y, z)
}

func recoilLine(x, y, z float64) []byte {
	return fmt.Appendf(nil,
		"\xdb 0999 28 2.5E+03 %.1f %.1f %.1f Fe \xdb\r\n", x, y, z)
}

// metadataFile builds a minimal TRIM.IN whose third line carries the ion
// count as its third-to-last token.
func metadataFile(ions int) []byte {
	return fmt.Appendf(nil,
		"==> SRIM-2013.00 This file controls TRIM Calculations.\r\n"+
			"Ion: Z1 ,  M1,  Energy (keV), Angle,Number,Bragg Corr,AutoSave Number.\r\n"+
			"     28   58.693       3000.0       0     %d      1    %d\r\n",
		ions, ions)
}

// writeFragment lays one result slot down on the filesystem.
func writeFragment(fs afero.Fs, categoryDir string, index, ions int, withCollision bool) error {
	dir := fmt.Sprintf("%s/%d", categoryDir, index)

	if err := afero.WriteFile(fs, dir+"/"+metadataFileName, metadataFile(ions), 0o644); err != nil {
		return err
	}

	if !withCollision {
		return nil
	}

	return afero.WriteFile(fs, dir+"/"+CollisionFileName, collisionFile(ions), 0o644)
}
