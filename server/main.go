package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/ryogrid/SamehadaBitmapScan/execution/plans"
	"github.com/ryogrid/SamehadaBitmapScan/samehada"
	"github.com/ryogrid/SamehadaBitmapScan/server/signal_handle"
	"github.com/ryogrid/SamehadaBitmapScan/storage/access"
	"github.com/ryogrid/SamehadaBitmapScan/storage/tuple"
	"github.com/ryogrid/SamehadaBitmapScan/types"
	"github.com/ugorji/go/codec"
)

type ColumnInput struct {
	Name    string
	Type    string
	Indexed bool
}

type CreateTableInput struct {
	Table   string
	Columns []ColumnInput
}

type InsertInput struct {
	Table string
	Rows  [][]interface{}
}

// Start and End are inclusive. A missing one means unbounded.
type SelectInput struct {
	Table  string
	Column string
	Start  interface{}
	End    interface{}
}

type Row struct {
	C []interface{}
}

type QueryOutput struct {
	Result []Row
	Error  string
}

var typeNames = map[string]types.TypeID{
	"INT":     types.Integer,
	"FLOAT":   types.Float,
	"VARCHAR": types.Varchar,
	"BOOLEAN": types.Boolean,
}

var db *samehada.SamehadaDB
var reqManager *samehada.RequestManager

// runPlan executes plan through the request manager, which retries it on
// serialization failures
func runPlan(level access.IsolationLevel, plan plans.Plan) ([]*tuple.Tuple, error) {
	res := <-reqManager.AppendRequest(level, func(ctx context.Context, sdb *samehada.SamehadaDB, txn *access.Transaction) ([]*tuple.Tuple, error) {
		return sdb.ExecutePlan(ctx, plan, txn)
	})
	return res.Result, res.Err
}

func isStopped(w rest.ResponseWriter) bool {
	if signal_handle.IsStopped.Load() {
		rest.Error(w, "Server is stopped", http.StatusGone)
		return true
	}
	return false
}

func postCreateTable(w rest.ResponseWriter, req *rest.Request) {
	if isStopped(w) {
		return
	}
	input := CreateTableInput{}
	if err := req.DecodeJsonPayload(&input); err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defs := make([]samehada.ColumnDef, 0, len(input.Columns))
	for _, col := range input.Columns {
		typ, ok := typeNames[col.Type]
		if !ok {
			rest.Error(w, "unknown column type: "+col.Type, http.StatusBadRequest)
			return
		}
		defs = append(defs, samehada.ColumnDef{Name: col.Name, Type: typ, Indexed: col.Indexed})
	}
	if _, err := db.CreateTable(input.Table, defs); err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteJson(&QueryOutput{make([]Row, 0), "SUCCESS"})
}

func postInsert(w rest.ResponseWriter, req *rest.Request) {
	if isStopped(w) {
		return
	}
	input := InsertInput{}
	if err := req.DecodeJsonPayload(&input); err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	plan, err := db.InsertPlan(input.Table, input.Rows)
	if err == nil {
		_, err = runPlan(access.REPEATABLE_READ, plan)
	}
	if err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteJson(&QueryOutput{make([]Row, 0), "SUCCESS"})
}

func selectRows(input *SelectInput) ([]Row, error) {
	schema_, err := db.GetTableSchema(input.Table)
	if err != nil {
		return nil, err
	}
	plan, err := db.RangeScanPlan(input.Table, input.Column, input.Start, input.End)
	if err != nil {
		return nil, err
	}
	result, err := runPlan(access.SERIALIZABLE, plan)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(result))
	for _, row := range samehada.ConvValuesToInterfaces(samehada.ConvTupleListToValues(schema_, result)) {
		rows = append(rows, Row{row})
	}
	return rows, nil
}

func postSelect(w rest.ResponseWriter, req *rest.Request) {
	if isStopped(w) {
		return
	}
	input := SelectInput{}
	if err := req.DecodeJsonPayload(&input); err != nil {
		fmt.Println(err)
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := selectRows(&input)
	if err != nil {
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteJson(&QueryOutput{rows, "SUCCESS"})
}

func postSelectMsgPack(w rest.ResponseWriter, req *rest.Request) {
	if signal_handle.IsStopped.Load() {
		http.Error(w.(http.ResponseWriter), "Server is stopped", http.StatusGone)
		return
	}
	input := SelectInput{}
	if err := req.DecodeJsonPayload(&input); err != nil {
		http.Error(w.(http.ResponseWriter), err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := selectRows(&input)
	if err != nil {
		http.Error(w.(http.ResponseWriter), err.Error(), http.StatusBadRequest)
		return
	}

	buf := new(bytes.Buffer)
	var h codec.Handle = new(codec.MsgpackHandle)
	if err := codec.NewEncoder(buf, h).Encode(rows); err != nil {
		http.Error(w.(http.ResponseWriter), err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.(http.ResponseWriter).Write(buf.Bytes())
}

func launchDBAndListen() {
	api := rest.NewApi()

	// the Middleware stack
	api.Use(rest.DefaultDevStack...)
	api.Use(&rest.JsonpMiddleware{
		CallbackNameKey: "cb",
	})
	api.Use(&rest.CorsMiddleware{
		RejectNonCorsRequests: false,
		OriginValidator: func(origin string, request *rest.Request) bool {
			return true
		},
		AllowedMethods:                []string{"POST"},
		AllowedHeaders:                []string{"Accept", "content-type"},
		AccessControlAllowCredentials: true,
		AccessControlMaxAge:           3600,
	})

	router, err := rest.MakeRouter(
		rest.Post("/CreateTable", postCreateTable),
		rest.Post("/Insert", postInsert),
		rest.Post("/Select", postSelect),
		rest.Post("/SelectMsgPack", postSelectMsgPack),
	)
	if err != nil {
		log.Fatal(err)
	}
	api.SetApp(router)

	log.Printf("Server started")
	log.Fatal(http.ListenAndServe(
		"0.0.0.0:19999",
		api.MakeHandler(),
	))
}

func main() {
	var err error
	db, err = samehada.NewSamehadaDB("default", 5000) //5MB
	if err != nil {
		log.Fatal(err)
	}
	reqManager = samehada.NewRequestManager(context.Background(), db)
	reqManager.StartTh()

	exitNotifyCh := make(chan bool, 1)

	// start signal handler thread
	go signal_handle.SignalHandlerTh(db, reqManager, exitNotifyCh)

	// start server
	go launchDBAndListen()

	// wait shutdown operation finished notification
	<-exitNotifyCh

	fmt.Println("Server is stopped gracefully")
	// exit process
	os.Exit(0)
}
