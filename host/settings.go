// Copyright 2021-2024 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

type settings struct {
	Verbose         bool `doc:"trace each assembly step"`
	Strict          bool `doc:"treat jumps to undefined labels as errors"`
	WriteMap        bool `doc:"write a source map when assembling files"`
	HexBytesPerLine int  `doc:"number of bytes per line when dumping code"`
	DisasmLines     int  `doc:"default number of lines to disassemble"`
}

func newSettings() *settings {
	return &settings{
		Verbose:         false,
		Strict:          false,
		WriteMap:        true,
		HexBytesPerLine: 8,
		DisasmLines:     10,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField

	errSettingType = errors.New("invalid type")
)

func init() {
	settingsType := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := range settingsFields {
		f := settingsType.Field(i)
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			doc:   f.Tag.Get("doc"),
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes each setting, its value and its description.
func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for _, f := range settingsFields {
		line := fmt.Sprintf("    %-16s %v", f.name, value.Field(f.index))
		fmt.Fprintf(w, "%-28s (%s)\n", line, f.doc)
	}
}

// Kind returns the kind of the setting whose name begins with key, or
// reflect.Invalid if there is no such setting.
func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns a bool or int64 value to a setting. Integer settings may not
// be negative.
func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	field := reflect.ValueOf(s).Elem().Field(f.index)
	switch v := value.(type) {
	case bool:
		if f.kind != reflect.Bool {
			return errSettingType
		}
		field.SetBool(v)
	case int64:
		if f.kind != reflect.Int {
			return errSettingType
		}
		if v < 0 {
			return fmt.Errorf("%s may not be negative", f.name)
		}
		field.SetInt(v)
	default:
		return errSettingType
	}
	return nil
}
