// Package serialization implements the .bcoo format for sparse COO tensors.
//
// A .bcoo file holds exactly one tensor:
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 Magic "BCOO"
//	    0x04 Version (uint32 LE)
//	    0x08 Flags (uint32 LE)
//	    0x0C Reserved
//	    0x10 Header size (uint64 LE)
//	    0x18 Payload size (uint64 LE)
//	    0x20 SHA-256 of the payload
//	  [Header: JSON metadata, padded to a 64-byte boundary]
//	  [Payload: nnz*rank int64 LE coordinates, then nnz values]
//
// Coordinates are written in the tensor's row-major order, so a decoded
// tensor never needs resorting. Float tensors may store their values as
// IEEE 754 binary16 (FlagHalfPrecision); they are widened on decode.
//
// Example usage:
//
//	err := serialization.WriteFile("grads.bcoo", t, serialization.EncodeOptions{Name: "grads"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	t2, header, err := serialization.ReadFile[float32]("grads.bcoo", serialization.DecodeOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(header.Name, t2.NNZ())
package serialization
