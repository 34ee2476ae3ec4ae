// Command libcmsis-pack-manager builds a C shared library exposing the
// cabi package's handle-returning operations as //export functions
// (spec.md §6, "FFI surface"). It is the one package in this module that
// imports "C"; everything else is reachable pure Go so it can be tested
// without a cgo build.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"strings"
	"unsafe"

	"github.com/pyocd/cmsis-pack-manager/cabi"
)

func main() {} // required by `go build -buildmode=c-shared`, never called

//export update_pdsc_index
func update_pdsc_index(packStore, vidxList *C.char) C.uint64_t {
	return C.uint64_t(cabi.UpdatePdscIndex(C.GoString(packStore), optionalGoString(vidxList)))
}

//export update_pdsc_install
func update_pdsc_install(packStore *C.char, pdscPaths **C.char, count C.int) C.uint64_t {
	paths := make([]string, 0, int(count))
	if pdscPaths != nil && count > 0 {
		slice := unsafe.Slice(pdscPaths, int(count))
		for _, p := range slice {
			paths = append(paths, C.GoString(p))
		}
	}
	return C.uint64_t(cabi.UpdatePdscInstall(C.GoString(packStore), paths))
}

//export update_pdsc_poll
func update_pdsc_poll(handle C.uint64_t) C.int {
	if cabi.UpdatePdscPoll(uint64(handle)) {
		return 1
	}
	return 0
}

//export update_pdsc_get_status
func update_pdsc_get_status(handle C.uint64_t, total, bytesSoFar, completed *C.int) C.int {
	status, ok := cabi.UpdatePdscGetStatus(uint64(handle))
	if !ok {
		return 0
	}
	if total != nil {
		*total = C.int(status.Total)
	}
	if bytesSoFar != nil {
		*bytesSoFar = C.int(status.BytesSoFar)
	}
	if completed != nil {
		*completed = C.int(status.Completed)
	}
	return 1
}

//export update_pdsc_result
func update_pdsc_result(handle C.uint64_t) C.uint64_t {
	return C.uint64_t(cabi.UpdatePdscResult(uint64(handle)))
}

//export update_pdsc_index_next
func update_pdsc_index_next(handle C.uint64_t) *C.char {
	path, ok := cabi.UpdatePdscResultNext(uint64(handle))
	if !ok {
		return nil
	}
	return C.CString(path)
}

//export update_pdsc_index_free
func update_pdsc_index_free(handle C.uint64_t) {
	cabi.UpdatePdscIndexFree(uint64(handle))
}

//export update_pdsc_result_free
func update_pdsc_result_free(handle C.uint64_t) {
	cabi.UpdatePdscResultFree(uint64(handle))
}

//export cstring_free
func cstring_free(ptr *C.char) {
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}

//export err_get_last_message
func err_get_last_message() *C.char {
	msg, ok := cabi.ErrGetLastMessage()
	if !ok {
		return nil
	}
	return C.CString(msg)
}

func optionalGoString(s *C.char) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(C.GoString(s))
}
