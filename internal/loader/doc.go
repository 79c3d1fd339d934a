// Package loader moves tensors between dense SafeTensors files and the
// sparse COO representation.
//
// Import reads one dense tensor, drops elements at or below a magnitude
// threshold and keeps the rest as coordinates:
//
//	t, meta, err := loader.ImportFile[float32]("model.safetensors", "encoder.weight", 1e-6)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Export scatters sparse tensors back into dense buffers and writes them in
// alphabetical order, which is what SafeTensors readers expect.
//
// F16 and BF16 inputs load as float32. BOOL tensors are not supported.
package loader
