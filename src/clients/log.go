package clients

import "github.com/sirupsen/logrus"

var log = *logrus.StandardLogger()
