package drebedengi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mishamsk/drebedengi-go/pkg/soap"
)

const respHeader = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope
  xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"
  xmlns:ns1="urn:dd"
  xmlns:ns2="http://xml.apache.org/xml-soap"
  xmlns:xsd="http://www.w3.org/2001/XMLSchema"
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  SOAP-ENV:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
<SOAP-ENV:Body>`

const respFooter = `</SOAP-ENV:Body>
</SOAP-ENV:Envelope>`

const recordListResponse = respHeader + `
<ns1:getRecordListResponse>
<getRecordListReturn xsi:type="ns2:Map">
<item>
  <key xsi:type="xsd:int">0</key>
  <value xsi:type="ns2:Map">
    <item><key xsi:type="xsd:string">id</key><value xsi:type="xsd:int">11396199674</value></item>
    <item><key xsi:type="xsd:string">budget_object_id</key><value xsi:type="xsd:int">1079656</value></item>
    <item><key xsi:type="xsd:string">user_nuid</key><value xsi:type="xsd:int">983989</value></item>
    <item><key xsi:type="xsd:string">budget_family_id</key><value xsi:type="xsd:int">989390</value></item>
    <item><key xsi:type="xsd:string">is_duty</key><value xsi:type="xsd:string">f</value></item>
    <item><key xsi:type="xsd:string">operation_date</key><value xsi:type="xsd:string">2022-04-27 00:00:00</value></item>
    <item><key xsi:type="xsd:string">currency_id</key><value xsi:type="xsd:int">1255161</value></item>
    <item><key xsi:type="xsd:string">operation_type</key><value xsi:type="xsd:int">3</value></item>
    <item><key xsi:type="xsd:string">place_id</key><value xsi:type="xsd:int">1079661</value></item>
    <item><key xsi:type="xsd:string">sum</key><value xsi:type="xsd:int">-25000</value></item>
    <item><key xsi:type="xsd:string">comment</key><value xsi:type="xsd:string">coffee</value></item>
    <item><key xsi:type="xsd:string">oper_timestamp</key><value xsi:type="xsd:string">1651075192</value></item>
  </value>
</item>
<item>
  <key xsi:type="xsd:int">1</key>
  <value xsi:type="ns2:Map">
    <item><key xsi:type="xsd:string">id</key><value xsi:type="xsd:int">11396199675</value></item>
    <item><key xsi:type="xsd:string">budget_object_id</key><value xsi:type="xsd:int">1079648</value></item>
    <item><key xsi:type="xsd:string">user_nuid</key><value xsi:type="xsd:int">983989</value></item>
    <item><key xsi:type="xsd:string">budget_family_id</key><value xsi:type="xsd:int">989390</value></item>
    <item><key xsi:type="xsd:string">is_duty</key><value xsi:type="xsd:string">f</value></item>
    <item><key xsi:type="xsd:string">operation_date</key><value xsi:type="xsd:string">2022-04-26 00:00:00</value></item>
    <item><key xsi:type="xsd:string">currency_id</key><value xsi:type="xsd:int">1255161</value></item>
    <item><key xsi:type="xsd:string">operation_type</key><value xsi:type="xsd:int">2</value></item>
    <item><key xsi:type="xsd:string">place_id</key><value xsi:type="xsd:int">1079661</value></item>
    <item><key xsi:type="xsd:string">sum</key><value xsi:type="xsd:int">100000</value></item>
    <item><key xsi:type="xsd:string">comment</key><value xsi:type="xsd:string"></value></item>
  </value>
</item>
</getRecordListReturn>
</ns1:getRecordListResponse>` + respFooter

const changeListResponse = respHeader + `
<ns1:getChangeListResponse>
<getChangeListReturn xsi:type="ns2:Map">
<item xsi:type="ns2:Map">
  <item><key xsi:type="xsd:string">revision</key><value xsi:type="xsd:int">100500</value></item>
  <item><key xsi:type="xsd:string">action_id</key><value xsi:type="xsd:int">2</value></item>
  <item><key xsi:type="xsd:string">object_type_id</key><value xsi:type="xsd:int">1</value></item>
  <item><key xsi:type="xsd:string">object_id</key><value xsi:type="xsd:int">11396199674</value></item>
  <item><key xsi:type="xsd:string">date</key><value xsi:type="xsd:string">2022-04-27 16:39:52</value></item>
</item>
</getChangeListReturn>
</ns1:getChangeListResponse>` + respFooter

const currentRevisionResponse = respHeader + `
<ns1:getCurrentRevisionResponse>
<getCurrentRevisionReturn xsi:type="xsd:int">100501</getCurrentRevisionReturn>
</ns1:getCurrentRevisionResponse>` + respFooter

const faultResponse = respHeader + `
<SOAP-ENV:Fault>
<faultcode>SOAP-ENV:Server</faultcode>
<faultstring>Error authorize: wrong login or password</faultstring>
</SOAP-ENV:Fault>` + respFooter

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		APIKey:   "test-api-key",
		Login:    "user@example.com",
		Password: "secret",
		Endpoint: srv.URL,
		Timeout:  5 * time.Second,
		Strict:   true,
	}, zap.NewNop())
}

func Test_GetTransactions_MapsParamsAndDecodesRecords(t *testing.T) {
	var gotBody string
	var gotAction string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		bb, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(bb)
		gotAction = r.Header.Get("SOAPAction")

		_, _ = w.Write([]byte(recordListResponse))
	})

	txs, err := client.GetTransactions(context.Background(), TransactionsRequest{
		IncludeTypes: TransactionExpense,
		Period:       PeriodThisMonth,
	})
	require.NoError(t, err)

	assert.Equal(t, "urn:dd#getRecordList", gotAction)

	// credentials and friendly->wire parameter names
	assert.Contains(t, gotBody, "<apiId xsi:type=\"xsd:string\">test-api-key</apiId>")
	assert.Contains(t, gotBody, "<login xsi:type=\"xsd:string\">user@example.com</login>")
	assert.Contains(t, gotBody, ">r_period<")
	assert.Contains(t, gotBody, ">r_what<")
	assert.Contains(t, gotBody, ">is_show_duty<")
	assert.Contains(t, gotBody, ">relative_date<")
	assert.NotContains(t, gotBody, "idList")

	require.Len(t, txs, 2)
	assert.Equal(t, int64(11396199674), txs[0].ID)
	assert.Equal(t, TransactionExpense, txs[0].OperationType)
	assert.Equal(t, int64(-25000), txs[0].Amount)
	assert.Equal(t, "coffee", txs[0].Comment)
	require.NotNil(t, txs[0].OperUTCTimestamp)

	// second record has no comment and no oper timestamp
	assert.Equal(t, TransactionIncome, txs[1].OperationType)
	assert.Empty(t, txs[1].Comment)
	assert.Nil(t, txs[1].OperUTCTimestamp)
}

func Test_GetTransactions_ByIDs_SendsIDList(t *testing.T) {
	var gotBody string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		bb, _ := io.ReadAll(r.Body)
		gotBody = string(bb)
		_, _ = w.Write([]byte(recordListResponse))
	})

	_, err := client.GetTransactions(context.Background(), TransactionsRequest{
		IDs: []int64{11396199674, 11396199675},
	})
	require.NoError(t, err)

	assert.Contains(t, gotBody, `SOAP-ENC:arrayType="xsd:int[2]"`)
	assert.Contains(t, gotBody, "<item xsi:type=\"xsd:int\">11396199674</item>")
}

func Test_GetTransactions_Aggregated_FailsWithoutCall(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.GetTransactions(context.Background(), TransactionsRequest{
		Aggregated: true,
		GroupBy:    GroupingByExpenseCategory,
	})
	assert.ErrorIs(t, err, ErrAggregatedNotSupported)
}

func Test_GetChanges_SendsRevisionAndDecodes(t *testing.T) {
	var gotBody string

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		bb, _ := io.ReadAll(r.Body)
		gotBody = string(bb)
		_, _ = w.Write([]byte(changeListResponse))
	})

	changes, err := client.GetChanges(context.Background(), 100499)
	require.NoError(t, err)

	assert.Contains(t, gotBody, "<revision xsi:type=\"xsd:int\">100499</revision>")

	require.Len(t, changes, 1)
	assert.Equal(t, int64(100500), changes[0].RevisionID)
	assert.Equal(t, ActionUpdate, changes[0].ActionType)
	assert.Equal(t, ObjectTransaction, changes[0].ChangeObjectType)
	assert.Equal(t, int64(11396199674), changes[0].ObjectID)
}

func Test_GetCurrentRevision(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "urn:dd#getCurrentRevision", r.Header.Get("SOAPAction"))
		_, _ = w.Write([]byte(currentRevisionResponse))
	})

	revision, err := client.GetCurrentRevision(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100501), revision)
}

func Test_Call_SOAPFault_SurfacesAsTypedError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(faultResponse))
	})

	_, err := client.GetCurrentRevision(context.Background())
	require.Error(t, err)

	var fault *soap.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "SOAP-ENV:Server", fault.Code)
	assert.Contains(t, fault.String, "wrong login or password")
}

func Test_Call_HTTPError_SurfacesAsStatusError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	_, err := client.GetCurrentRevision(context.Background())
	require.Error(t, err)

	var statusErr *soap.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func Test_GetExpenseCategories_Decodes(t *testing.T) {
	resp := respHeader + `
<ns1:getCategoryListResponse>
<getCategoryListReturn xsi:type="ns2:Map">
<item xsi:type="ns2:Map">
  <item><key xsi:type="xsd:string">id</key><value xsi:type="xsd:int">1079654</value></item>
  <item><key xsi:type="xsd:string">parent_id</key><value xsi:type="xsd:int">-1</value></item>
  <item><key xsi:type="xsd:string">budget_family_id</key><value xsi:type="xsd:int">989390</value></item>
  <item><key xsi:type="xsd:string">type</key><value xsi:type="xsd:int">3</value></item>
  <item><key xsi:type="xsd:string">name</key><value xsi:type="xsd:string">Food</value></item>
  <item><key xsi:type="xsd:string">is_hidden</key><value xsi:type="xsd:string">f</value></item>
  <item><key xsi:type="xsd:string">sort</key><value xsi:type="xsd:int">1</value></item>
</item>
</getCategoryListReturn>
</ns1:getCategoryListResponse>` + respFooter

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resp))
	})

	categories, err := client.GetExpenseCategories(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, categories, 1)
	assert.Equal(t, "Food", categories[0].Name)
	assert.Equal(t, int64(-1), categories[0].ParentID)
	assert.Equal(t, ObjectExpenseCategory, categories[0].ObjectType)
}

func Test_Strict_MissingRequiredField_FailsCall(t *testing.T) {
	// record without operation_type
	resp := respHeader + `
<ns1:getRecordListResponse>
<getRecordListReturn xsi:type="ns2:Map">
<item>
  <key xsi:type="xsd:int">0</key>
  <value xsi:type="ns2:Map">
    <item><key xsi:type="xsd:string">id</key><value xsi:type="xsd:int">1</value></item>
  </value>
</item>
</getRecordListReturn>
</ns1:getRecordListResponse>` + respFooter

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resp))
	})

	_, err := client.GetTransactions(context.Background(), TransactionsRequest{})
	assert.ErrorIs(t, err, ErrMissingField)
}
