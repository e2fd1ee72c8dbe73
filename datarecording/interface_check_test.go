package datarecording

import "github.com/seantronsen/virtual-memory-sim/validation"

// If this compiles, the interfaces are correctly implemented.

var _ DataRecorder = (*sqliteWriter)(nil)
var _ DataRecorder = (*clickhouseWriter)(nil)
var _ DataReader = (*sqliteReader)(nil)
var _ validation.Observer = (*RunRecorder)(nil)
