package soap

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	nsEnvelope  = "http://schemas.xmlsoap.org/soap/envelope/"
	nsEncoding  = "http://schemas.xmlsoap.org/soap/encoding/"
	nsXSI       = "http://www.w3.org/2001/XMLSchema-instance"
	nsXSD       = "http://www.w3.org/2001/XMLSchema"
	nsApacheMap = "http://xml.apache.org/xml-soap"
)

// Client is a minimal SOAP 1.1 rpc/encoded client. It knows how to build
// an envelope around a marshallable payload, post it and surface faults.
type Client struct {
	endpoint  string
	serviceNS string
	hc        *http.Client
	log       *zap.Logger
}

func NewClient(endpoint, serviceNS string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		endpoint:  endpoint,
		serviceNS: serviceNS,
		hc:        &http.Client{Timeout: timeout},
		log:       log,
	}
}

type envelope struct {
	XMLName  xml.Name `xml:"SOAP-ENV:Envelope"`
	NSEnv    string   `xml:"xmlns:SOAP-ENV,attr"`
	NSEnc    string   `xml:"xmlns:SOAP-ENC,attr"`
	NSXSI    string   `xml:"xmlns:xsi,attr"`
	NSXSD    string   `xml:"xmlns:xsd,attr"`
	NSSvc    string   `xml:"xmlns:ns1,attr"`
	NSMap    string   `xml:"xmlns:ns2,attr"`
	EncStyle string   `xml:"SOAP-ENV:encodingStyle,attr"`
	Body     body
}

type body struct {
	XMLName xml.Name `xml:"SOAP-ENV:Body"`
	Payload any
}

// Call posts the payload as the body of a SOAP request for the given
// method and returns the raw response body. A SOAP fault in the response
// comes back as *Fault, a non-2xx status as *StatusError.
func (c *Client) Call(ctx context.Context, method string, payload any) ([]byte, error) {
	env := envelope{
		NSEnv:    nsEnvelope,
		NSEnc:    nsEncoding,
		NSXSI:    nsXSI,
		NSXSD:    nsXSD,
		NSSvc:    c.serviceNS,
		NSMap:    nsApacheMap,
		EncStyle: nsEncoding,
		Body:     body{Payload: payload},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", c.serviceNS+"#"+method)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	c.log.Debug(
		"SOAP call",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Int("response_bytes", len(respBody)),
		zap.Duration("dur", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	fault, err := parseFault(respBody)
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", method, err)
	}
	if fault != nil {
		return nil, fault
	}

	return respBody, nil
}
