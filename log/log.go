// Copyright 2026 The Witness Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"fmt"
)

var log Logger = SilentLogger{}

// Logger is used by go-ers to log information. Any logger that satisfies
// this interface, such as a *logrus.Logger, can be installed with SetLogger.
type Logger interface {
	Errorf(format string, args ...interface{})
	Error(args ...interface{})
	Warnf(format string, args ...interface{})
	Warn(args ...interface{})
	Debugf(format string, args ...interface{})
	Debug(args ...interface{})
	Infof(format string, args ...interface{})
	Info(args ...interface{})
}

// SetLogger sets the logger used by the library. By default nothing is logged.
// SetLogger is not safe to call while verifications are running.
func SetLogger(l Logger) {
	if l == nil {
		l = SilentLogger{}
	}

	log = l
}

// GetLogger returns the logger currently in use.
func GetLogger() Logger {
	return log
}

// Errorf uses the fmt.Errorf function to format the error before logging it.
func Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	log.Error(err)
}

func Error(args ...interface{}) {
	log.Error(args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Warn(args ...interface{}) {
	log.Warn(args...)
}

func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

func Debug(args ...interface{}) {
	log.Debug(args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Info(args ...interface{}) {
	log.Info(args...)
}
